package taxonomy

// Category is the single document category assigned to a file.
type Category string

const (
	CategoryPSPack       Category = "PS Pack"
	CategoryDataAnalysis Category = "Data Analysis"
	CategoryMandalList   Category = "Mandal List"
	CategoryDashboard    Category = "Dashboard"
	CategoryMeeting      Category = "Meeting"
	CategoryCrime        Category = "Crime-incident"
	CategoryFinalReport  Category = "Final Report"
	CategoryKML          Category = "KML"
	CategoryOther        Category = "Other"
)

// Categories is ordered by priority: a filename mentioning both a police
// station pack and a final report is filed as a PS Pack.
var Categories = RuleTable[Category]{
	{CategoryPSPack, []string{"PS", "Pack", "Station", "Police Station"}},
	{CategoryDataAnalysis, []string{"Analysis", "Comparison", "History", "Statistic", "Insight"}},
	{CategoryMandalList, []string{"Mandal", "QR", "Registration"}},
	{CategoryDashboard, []string{"Dashboard", "Metrics", "Overview"}},
	{CategoryMeeting, []string{"Meeting", "Minute", "Discussion", "Order"}},
	{CategoryCrime, []string{"Crime", "Incident", "FIR", "Case", "CrPC"}},
	{CategoryFinalReport, []string{"Final", "Executive", "Official", "Complete"}},
}

// IsDefault reports whether c is the fallback category.
func (c Category) IsDefault() bool { return c == CategoryOther }
