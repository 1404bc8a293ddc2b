package models

// Choice is a stored value with its display label.
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var Languages = []Choice{
	{"es", "Spanish"},
	{"en", "English"},
	{"de", "German"},
	{"fr", "French"},
}

var WeekDays = []Choice{
	{"1", "Monday"},
	{"2", "Tuesday"},
	{"3", "Wednesday"},
	{"4", "Thursday"},
	{"5", "Friday"},
	{"6", "Saturday"},
	{"7", "Sunday"},
}

var Periods = []Choice{
	{"1", "First semester"},
	{"2", "Second semester"},
	{"3", "Both semesters"},
}

const (
	DefaultExtraTitleLanguage = "en"
	DefaultCourseLanguage     = "es"
	DefaultWeekDay            = "1"
	DefaultPeriod             = "1"
	DefaultDurationMinutes    = 30
)

// ChoiceLabel returns the label for value, or value itself when unknown.
func ChoiceLabel(choices []Choice, value string) string {
	for _, c := range choices {
		if c.Value == value {
			return c.Label
		}
	}
	return value
}
