package domain

import "strings"

type ShippingInfo struct {
	FullName string `json:"shipping_full_name"`
	Email    string `json:"shipping_email"`
	Address1 string `json:"shipping_address1"`
	Address2 string `json:"shipping_address2"`
	City     string `json:"shipping_city"`
	State    string `json:"shipping_state"`
	Zipcode  string `json:"shipping_zipcode"`
	Country  string `json:"shipping_country"`
}

// Address renders the postal part one field per line. Empty fields keep
// their line so the layout stays fixed.
func (s ShippingInfo) Address() string {
	return strings.Join([]string{
		s.Address1,
		s.Address2,
		s.City,
		s.State,
		s.Zipcode,
		s.Country,
	}, "\n")
}
