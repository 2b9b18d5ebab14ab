package http

type createListingReq struct {
	Title       string   `json:"title" binding:"required"`
	Price       float64  `json:"price" binding:"required,gt=0"`
	Location    string   `json:"location" binding:"required"`
	Type        string   `json:"type" binding:"required,oneof=sale rent"`
	Category    string   `json:"category" binding:"required"`
	Bedrooms    int      `json:"bedrooms"`
	Bathrooms   int      `json:"bathrooms"`
	Area        float64  `json:"area"`
	Description string   `json:"description"`
	ImageURL    string   `json:"imageUrl"`
	Images      []string `json:"images"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
}

type updateListingReq struct {
	Title       *string  `json:"title"`
	Price       *float64 `json:"price"`
	Location    *string  `json:"location"`
	Type        *string  `json:"type"`
	Category    *string  `json:"category"`
	Bedrooms    *int     `json:"bedrooms"`
	Bathrooms   *int     `json:"bathrooms"`
	Area        *float64 `json:"area"`
	Description *string  `json:"description"`
	ImageURL    *string  `json:"imageUrl"`
	Status      *string  `json:"status"`
}
