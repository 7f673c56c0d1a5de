package models

import "github.com/shopspring/decimal"

type EnergyClass string

const (
	EnergyUnknown EnergyClass = ""
	EnergyA       EnergyClass = "A"
	EnergyB       EnergyClass = "B"
	EnergyC       EnergyClass = "C"
	EnergyD       EnergyClass = "D"
	EnergyE       EnergyClass = "E"
	EnergyF       EnergyClass = "F"
	EnergyG       EnergyClass = "G"
)

// EnergyClasses lists DPE labels from best to worst.
var EnergyClasses = [...]EnergyClass{EnergyA, EnergyB, EnergyC, EnergyD, EnergyE, EnergyF, EnergyG}

// Rank returns 0 for A through 6 for G, or -1 when unknown.
func (c EnergyClass) Rank() int {
	for i, candidate := range EnergyClasses {
		if candidate == c {
			return i
		}
	}
	return -1
}

func (c EnergyClass) Known() bool { return c.Rank() >= 0 }

func (c EnergyClass) In(classes ...EnergyClass) bool {
	for _, candidate := range classes {
		if c == candidate {
			return true
		}
	}
	return false
}

type SyndicType string

const (
	SyndicUnknown      SyndicType = ""
	SyndicProfessional SyndicType = "professional"
	SyndicVolunteer    SyndicType = "volunteer"
)

func (s SyndicType) Known() bool {
	return s == SyndicProfessional || s == SyndicVolunteer
}

// EntitySnapshot is the resolved registry record of one condominium at the
// time of computation. Optional numbers are nil when the registry has no
// value; risk and equipment flags are tri-state.
type EntitySnapshot struct {
	ID         string   `json:"id"`
	Slug       string   `json:"slug,omitempty"`
	Name       string   `json:"name,omitempty"`
	Address    string   `json:"address,omitempty"`
	City       string   `json:"city,omitempty"`
	PostalCode string   `json:"postalCode,omitempty"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`

	ConstructionPeriod ConstructionPeriod `json:"constructionPeriod"`

	SyndicType            SyndicType          `json:"syndicType"`
	IsCooperative         TriState            `json:"isCooperative"`
	TotalLots             *int                `json:"totalLots"`
	WorksFundContribution decimal.NullDecimal `json:"worksFundContribution"`

	InRiskPreventionPlan      TriState `json:"inRiskPreventionPlan"`
	ProvisionalAdministration TriState `json:"provisionalAdministration"`
	UnsanitaryProcedure       TriState `json:"unsanitaryProcedure"`
	CommonEquipmentProcedure  TriState `json:"commonEquipmentProcedure"`
	OrdinaryPerilOrder        TriState `json:"ordinaryPerilOrder"`
	ImminentPerilOrder        TriState `json:"imminentPerilOrder"`
	AdHocMandate              TriState `json:"adHocMandate"`

	EnergyClass       EnergyClass `json:"energyClass"`
	CollectiveHeating TriState    `json:"collectiveHeating"`

	HasElevator  TriState `json:"hasElevator"`
	FloorCount   *int     `json:"floorCount"`
	HasCaretaker TriState `json:"hasCaretaker"`

	MarketAnnualPriceChangePct decimal.NullDecimal `json:"marketAnnualPriceChangePct"`
	MarketTransactionCount     *int                `json:"marketTransactionCount"`

	BylawDate        *Date `json:"bylawDate,omitempty"`
	RegistrationDate *Date `json:"registrationDate,omitempty"`
	LastUpdateDate   *Date `json:"lastUpdateDate,omitempty"`
}

// SyndicKnown reports whether the management form is known, either as a
// syndic type or as a confirmed cooperative.
func (s *EntitySnapshot) SyndicKnown() bool {
	return s.SyndicType.Known() || s.IsCooperative.IsTrue()
}

// HasCoordinates reports whether the snapshot can anchor a radius query.
func (s *EntitySnapshot) HasCoordinates() bool {
	return s.Latitude != nil && s.Longitude != nil
}

// DiagnosticRecord is one energy-performance diagnostic filed for the
// condominium.
type DiagnosticRecord struct {
	Date        *Date       `json:"date"`
	EnergyClass EnergyClass `json:"energyClass"`
	GHGClass    EnergyClass `json:"ghgClass,omitempty"`
}

// TransactionRecord is a registered sale near the condominium.
type TransactionRecord struct {
	Date         Date            `json:"date"`
	Area         decimal.Decimal `json:"area"`
	Price        decimal.Decimal `json:"price"`
	PropertyType string          `json:"propertyType,omitempty"`
}

// PricePerArea returns price / area rounded to the euro, or false when the
// area is not positive.
func (t TransactionRecord) PricePerArea() (decimal.Decimal, bool) {
	if !t.Area.IsPositive() {
		return decimal.Zero, false
	}
	return t.Price.Div(t.Area).Round(0), true
}

// IntPtr is a small helper for optional integer fields.
func IntPtr(v int) *int { return &v }
