package domain

import "time"

// FlightSegment is the snapshot of a flight a draft carries. It is set once
// per booking attempt and treated as immutable after seat selection starts.
type FlightSegment struct {
	Airline      string    `json:"airline"`
	FlightNumber string    `json:"flightNumber"`
	Origin       string    `json:"origin"`
	Destination  string    `json:"destination"`
	DepartTime   time.Time `json:"departTime"`
	ArriveTime   time.Time `json:"arriveTime"`
	CabinClass   string    `json:"cabinClass"`
	BaseFare     float64   `json:"baseFare"`
	Taxes        float64   `json:"taxes"`
	Currency     string    `json:"currency"`
}

type Passenger struct {
	FullName       string `json:"fullName"`
	DateOfBirth    string `json:"dateOfBirth"`
	Gender         string `json:"gender"`
	DocumentType   string `json:"documentType"`
	DocumentNumber string `json:"documentNumber"`
}

type SupportPackage string

const (
	SupportStandard SupportPackage = "STANDARD"
	SupportPlatinum SupportPackage = "PLATINUM"
)

type ExtraServices struct {
	SupportPackage SupportPackage `json:"supportPackage"`
	MedicalCover   bool           `json:"medicalCover"`
	CollapseCover  bool           `json:"collapseCover"`
}

// FlightSearchParams is the upstream flight-search query contract.
type FlightSearchParams struct {
	Origin        string
	Destination   string
	DepartureDate string
	Passengers    int
	CabinClass    string
	Page          int
	Size          int
}

// FlightPage is one page of search results as returned by the backend.
type FlightPage struct {
	Content       []FlightSegment `json:"content"`
	Page          int             `json:"page"`
	Size          int             `json:"size"`
	TotalElements int             `json:"totalElements"`
	TotalPages    int             `json:"totalPages"`
}
