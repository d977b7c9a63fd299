package taxonomy

import "strings"

// Jurisdiction is a police station area. The zero value is Unclassified.
type Jurisdiction string

// Unclassified marks a file or entity with no recognised police station.
// It is rendered as CityWideName on the wire.
const Unclassified Jurisdiction = ""

// CityWideName is the display form of Unclassified.
const CityWideName = "Nashik City"

const (
	Adgaon      Jurisdiction = "Adgaon"
	Bhadrakali  Jurisdiction = "Bhadrakali"
	NashikRoad  Jurisdiction = "Nashik Road"
	Panchavati  Jurisdiction = "Panchavati"
	Gangapur    Jurisdiction = "Gangapur"
	Sarkarwada  Jurisdiction = "Sarkarwada"
	MumbaiNaka  Jurisdiction = "Mumbai Naka"
	Mhasrul     Jurisdiction = "Mhasrul"
	Ambad       Jurisdiction = "Ambad"
	Indiranagar Jurisdiction = "Indiranagar"
	Upnagar     Jurisdiction = "Upnagar"
	Satpur      Jurisdiction = "Satpur"
	DeolaliCamp Jurisdiction = "Deolali Camp"
)

// Jurisdictions is matched against filenames by station name.
var Jurisdictions = RuleTable[Jurisdiction]{
	{Adgaon, []string{"Adgaon"}},
	{Bhadrakali, []string{"Bhadrakali"}},
	{NashikRoad, []string{"Nashik Road"}},
	{Panchavati, []string{"Panchavati"}},
	{Gangapur, []string{"Gangapur"}},
	{Sarkarwada, []string{"Sarkarwada"}},
	{MumbaiNaka, []string{"Mumbai Naka"}},
	{Mhasrul, []string{"Mhasrul"}},
	{Ambad, []string{"Ambad"}},
	{Indiranagar, []string{"Indiranagar"}},
	{Upnagar, []string{"Upnagar"}},
	{Satpur, []string{"Satpur"}},
	{DeolaliCamp, []string{"Deolali Camp"}},
}

// IsClassified reports whether j names a real station.
func (j Jurisdiction) IsClassified() bool { return j != Unclassified }

func (j Jurisdiction) String() string {
	if j == Unclassified {
		return CityWideName
	}
	return string(j)
}

// MarshalText renders Unclassified as the city-wide placeholder.
func (j Jurisdiction) MarshalText() ([]byte, error) {
	return []byte(j.String()), nil
}

// UnmarshalText maps the city-wide placeholder back to Unclassified.
func (j *Jurisdiction) UnmarshalText(b []byte) error {
	*j = ParseJurisdiction(string(b))
	return nil
}

// ParseJurisdiction resolves a station name, accepting the
// "<name> Police Station" form used by the station register.
func ParseJurisdiction(s string) Jurisdiction {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, CityWideName) {
		return Unclassified
	}
	trimmed := strings.TrimSpace(strings.TrimSuffix(strings.TrimSuffix(s, " Police Station"), " PS"))
	for _, j := range Jurisdictions.Results() {
		if strings.EqualFold(string(j), trimmed) {
			return j
		}
	}
	return Jurisdiction(s)
}
