package pickyourpart

import "time"

// rawVehicle is one parsed inventory row before normalization into the
// canonical schema.
type rawVehicle struct {
	RowID       string
	Year        int
	Make        string
	Model       string
	Color       string
	VIN         string
	StockNumber string
	Section     string
	Row         string
	Space       string
	Available   time.Time
	ImageURLs   []string
}

// yardFile is the shape of the configured yard list.
type yardFile struct {
	Yards []yard `yaml:"yards"`
}

type yard struct {
	Code      string  `yaml:"code"`
	Name      string  `yaml:"name"`
	Address   string  `yaml:"address"`
	City      string  `yaml:"city"`
	State     string  `yaml:"state"`
	Zip       string  `yaml:"zip"`
	Phone     string  `yaml:"phone"`
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
}
