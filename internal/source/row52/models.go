package row52

// OData response envelopes for the two upstream resources.

type locationsResponse struct {
	Value []locationRecord `json:"value"`
}

type vehiclesResponse struct {
	Value []vehicleRecord `json:"value"`
}

type locationRecord struct {
	ID         string  `json:"Id"`
	Name       string  `json:"Name"`
	Address1   string  `json:"Address1"`
	City       string  `json:"City"`
	StateCode  string  `json:"StateCode"`
	PostalCode string  `json:"PostalCode"`
	Phone      string  `json:"Phone"`
	Latitude   float64 `json:"Latitude"`
	Longitude  float64 `json:"Longitude"`
}

type vehicleRecord struct {
	ID          string          `json:"Id"`
	VIN         string          `json:"Vin"`
	Year        int             `json:"Year"`
	MakeName    string          `json:"MakeName"`
	ModelName   string          `json:"ModelName"`
	Color       string          `json:"Color"`
	StockNumber string          `json:"StockNumber"`
	Section     string          `json:"Section"`
	Row         string          `json:"Row"`
	Space       string          `json:"Space"`
	DateAdded   string          `json:"DateAdded"`
	Images      []vehicleImage  `json:"Images"`
	LocationID  string          `json:"LocationId"`
	Location    *locationRecord `json:"Location"`
}

type vehicleImage struct {
	URL string `json:"Url"`
}
