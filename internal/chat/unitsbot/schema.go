package unitsbot

// Structured search criteria extracted from the conversation. Fields the
// user never mentioned stay nil so downstream consumers can tell "not asked"
// from "asked and false".

type DownPayment struct {
	Value         int    `json:"value"`
	AmountPercent string `json:"amount_percent"` // "exact_amount" or "percentage"
}

type PaymentPlan struct {
	DownPayment       *DownPayment `json:"downpayment"`
	MonthlyPayment    *int         `json:"monthly_payment"`
	InstallmentsYears *int         `json:"installments_years"`
}

type PropertyType struct {
	Apartment     bool `json:"apartment"`
	Villa         bool `json:"villa"`
	House         bool `json:"house"`
	TwinHouse     bool `json:"twin_house"`
	Townhouse     bool `json:"townhouse"`
	Duplex        bool `json:"duplex"`
	Penthouse     bool `json:"penthouse"`
	Chalet        bool `json:"chalet"`
	Studio        bool `json:"studio"`
	Cabin         bool `json:"cabin"`
	Palace        bool `json:"palace"`
	WholeBuilding bool `json:"whole_building"`
	Land          bool `json:"land"`
	Office        bool `json:"office"`
	Retail        bool `json:"retail"`
	Clinic        bool `json:"clinic"`
	Pharmacy      bool `json:"pharmacy"`
}

type Location struct {
	Value    string `json:"value"`
	Compound bool   `json:"compound"`
}

type ForRent struct {
	RentalFrequency  string `json:"rental_frequency"` // monthly, yearly, daily, weekly
	RentalDuration   *int   `json:"rental_duration"`
	FurnishingStatus string `json:"furnishing_status"`
}

type ListingType struct {
	PrimarySale bool     `json:"primary_sale"`
	Resale      bool     `json:"resale"`
	ForRent     *ForRent `json:"for_rent"`
}

type ExtractedInfo struct {
	AboutRealEstate bool           `json:"about_real_estate"`
	PropertyType    *PropertyType  `json:"property_type"`
	Location        []Location     `json:"location"`
	Bedrooms        []int          `json:"bedrooms"`
	Bathrooms       []int          `json:"bathrooms"`
	Price           []int          `json:"price"`
	Area            []int          `json:"area"`
	ListingType     *ListingType   `json:"listing_type"`
	Garden          *bool          `json:"garden"`
	RoofSpace       *bool          `json:"roof_space"`
	Floor           []int          `json:"floor"`
	PaymentPlan     []PaymentPlan  `json:"payment_plan"`
	ReadyToMove     *bool          `json:"ready_to_move"`
	DeliveryDate    *string        `json:"delivery_date"`
	Finishing       []string       `json:"finishing"`
	DeveloperTitle  []string       `json:"developer_title"`
	Featured        *bool          `json:"featured"`
}

// Empty reports whether extraction produced nothing a search could act on.
func (e *ExtractedInfo) Empty() bool {
	if e == nil {
		return true
	}
	return e.PropertyType == nil && len(e.Location) == 0 && len(e.Bedrooms) == 0 &&
		len(e.Bathrooms) == 0 && len(e.Price) == 0 && len(e.Area) == 0 &&
		e.ListingType == nil && len(e.PaymentPlan) == 0 && len(e.Floor) == 0 &&
		len(e.Finishing) == 0 && len(e.DeveloperTitle) == 0
}
