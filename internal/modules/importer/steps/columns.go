package steps

// Column-name-to-key mappings for the assessment export format. These names
// are a compatibility contract with existing exports and must not change.

const (
	ColProject        = "Project"
	ColEmail          = "Email"
	ColFirstName      = "First Name"
	ColLastName       = "Last Name"
	ColCountry        = "Country"
	ColLanguage       = "Language"
	ColAssessmentDate = "Assessment Date"
	ColYearOfBirth    = "Year of Birth"
	ColGender         = "Gender"
	ColJobRole        = "Job Role"
	ColSector         = "Sector"
	ColDataConsent    = "Data Consent"
)

// CompetencyColumns maps the three top-level composite score columns to their
// internal metric keys.
var CompetencyColumns = []ColumnMapping{
	{Column: "Know Yourself Score", Key: "K", Label: "Know Yourself"},
	{Column: "Choose Yourself Score", Key: "C", Label: "Choose Yourself"},
	{Column: "Give Yourself Score", Key: "G", Label: "Give Yourself"},
}

// SubfactorColumns maps the eight sub-competency score columns.
var SubfactorColumns = []ColumnMapping{
	{Column: "Enhance Emotional Literacy Score", Key: "EL", Label: "Enhance Emotional Literacy"},
	{Column: "Recognize Patterns Score", Key: "RP", Label: "Recognize Patterns"},
	{Column: "Apply Consequential Thinking Score", Key: "ACT", Label: "Apply Consequential Thinking"},
	{Column: "Navigate Emotions Score", Key: "NE", Label: "Navigate Emotions"},
	{Column: "Engage Intrinsic Motivation Score", Key: "IM", Label: "Engage Intrinsic Motivation"},
	{Column: "Exercise Optimism Score", Key: "OP", Label: "Exercise Optimism"},
	{Column: "Increase Empathy Score", Key: "EMP", Label: "Increase Empathy"},
	{Column: "Pursue Noble Goals Score", Key: "NG", Label: "Pursue Noble Goals"},
}

// OutcomeColumns maps the life/work outcome metric columns.
var OutcomeColumns = []ColumnMapping{
	{Column: "Effectiveness Score", Key: "effectiveness", Label: "Effectiveness"},
	{Column: "Relationships Score", Key: "relationships", Label: "Relationships"},
	{Column: "Wellbeing Score", Key: "wellbeing", Label: "Wellbeing"},
	{Column: "Quality of Life Score", Key: "quality_of_life", Label: "Quality of Life"},
	{Column: "Influence Score", Key: "influence", Label: "Influence"},
	{Column: "Decision Making Score", Key: "decision_making", Label: "Decision Making"},
}

// TalentColumns maps the talent profile columns.
var TalentColumns = []ColumnMapping{
	{Column: "Focus Talent", Key: "focus", Label: "Focus"},
	{Column: "Adaptability Talent", Key: "adaptability", Label: "Adaptability"},
	{Column: "Connection Talent", Key: "connection", Label: "Connection"},
	{Column: "Collaboration Talent", Key: "collaboration", Label: "Collaboration"},
	{Column: "Critical Thinking Talent", Key: "critical_thinking", Label: "Critical Thinking"},
	{Column: "Resilience Talent", Key: "resilience", Label: "Resilience"},
	{Column: "Imagination Talent", Key: "imagination", Label: "Imagination"},
	{Column: "Proactivity Talent", Key: "proactivity", Label: "Proactivity"},
	{Column: "Prioritizing Talent", Key: "prioritizing", Label: "Prioritizing"},
	{Column: "Vision Talent", Key: "vision", Label: "Vision"},
	{Column: "Reflection Talent", Key: "reflection", Label: "Reflection"},
	{Column: "Problem Solving Talent", Key: "problem_solving", Label: "Problem Solving"},
}

type ColumnMapping struct {
	Column string
	Key    string
	Label  string
}
