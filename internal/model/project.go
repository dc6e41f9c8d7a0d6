// Package model defines domain types for the ConstructERP finance dashboard.
package model

// ProjectStatus is the lifecycle state of a construction project.
type ProjectStatus string

const (
	StatusActive    ProjectStatus = "Active"
	StatusCompleted ProjectStatus = "Completed"
	StatusOnHold    ProjectStatus = "On Hold"
)

// Project is a construction project with its budget position.
// Spent may exceed Budget. Progress is a whole percentage.
type Project struct {
	ID        int           `json:"id" yaml:"id" validate:"gt=0"`
	Name      string        `json:"name" yaml:"name" validate:"required"`
	Budget    float64       `json:"budget" yaml:"budget" validate:"gt=0"`
	Spent     float64       `json:"spent" yaml:"spent" validate:"gte=0"`
	Progress  int           `json:"progress" yaml:"progress" validate:"gte=0,lte=100"`
	Status    ProjectStatus `json:"status" yaml:"status" validate:"oneof=Active Completed 'On Hold'"`
	StartDate string        `json:"startDate" yaml:"start_date" validate:"datetime=2006-01-02"`
	EndDate   string        `json:"endDate" yaml:"end_date" validate:"datetime=2006-01-02"`
}

// RiskLevel is an ordered severity band: Low < Medium < High < Critical.
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskMedium   RiskLevel = "Medium"
	RiskHigh     RiskLevel = "High"
	RiskCritical RiskLevel = "Critical"
)

// Rank returns the position of the level in severity order, or -1 if unknown.
func (l RiskLevel) Rank() int {
	switch l {
	case RiskLow:
		return 0
	case RiskMedium:
		return 1
	case RiskHigh:
		return 2
	case RiskCritical:
		return 3
	}
	return -1
}

// AtLeast reports whether l is as severe as other or more.
func (l RiskLevel) AtLeast(other RiskLevel) bool {
	return l.Rank() >= other.Rank()
}

// RiskLevels lists every level in ascending severity.
func RiskLevels() []RiskLevel {
	return []RiskLevel{RiskLow, RiskMedium, RiskHigh, RiskCritical}
}

// RiskAssessment is derived from a Project on demand and never stored.
type RiskAssessment struct {
	ProjectID         int       `json:"projectId"`
	ProjectName       string    `json:"projectName"`
	RiskScore         int       `json:"riskScore"`
	RiskLevel         RiskLevel `json:"riskLevel"`
	Factors           []string  `json:"factors"`
	BudgetUsedPercent float64   `json:"budgetUsedPercent"`
}
