package curriculum

import (
	"fmt"

	"golang.org/x/text/cases"
)

var folder = cases.Fold()

var categoryNames = []string{
	CategoryIntroduction:       "Introduction",
	CategorySetup:              "Setup",
	CategoryAPIDevelopment:     "ApiDevelopment",
	CategoryBlazorBasics:       "BlazorBasics",
	CategoryComponents:         "Components",
	CategoryStateManagement:    "StateManagement",
	CategoryDashboard:          "Dashboard",
	CategoryAdvanced:           "Advanced",
	CategoryWrapUp:             "WrapUp",
	CategoryCSharpFundamentals: "CSharpFundamentals",
	CategoryCSharpTypes:        "CSharpTypes",
	CategoryDataAccess:         "DataAccess",
	CategoryNextSteps:          "NextSteps",
}

var categoryDisplayNames = map[Category]string{
	CategoryIntroduction:    "📖 Introduction",
	CategorySetup:           "🛠️ Environment Setup",
	CategoryAPIDevelopment:  "🚀 API Development",
	CategoryBlazorBasics:    "⚡ Blazor Basics",
	CategoryComponents:      "🧩 Components",
	CategoryStateManagement: "🔄 State Management",
	CategoryDashboard:       "📊 Dashboard",
	CategoryAdvanced:        "🎯 Advanced Topics",
	CategoryWrapUp:          "🎉 Wrap-Up",
}

var categoryLookup = func() map[string]Category {
	m := make(map[string]Category, len(categoryNames))
	for i, name := range categoryNames {
		m[folder.String(name)] = Category(i)
	}
	return m
}()

// Categories returns every known category in declaration order.
func Categories() []Category {
	out := make([]Category, len(categoryNames))
	for i := range categoryNames {
		out[i] = Category(i)
	}
	return out
}

// ParseCategory looks up a category name case-insensitively.
// Unknown names map to CategoryIntroduction.
func ParseCategory(name string) Category {
	if c, ok := categoryLookup[folder.String(name)]; ok {
		return c
	}
	return CategoryIntroduction
}

func (c Category) String() string {
	if c >= 0 && int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// DisplayName returns the dashboard heading for a category.
func (c Category) DisplayName() string {
	if name, ok := categoryDisplayNames[c]; ok {
		return name
	}
	return c.String()
}

func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(text []byte) error {
	*c = ParseCategory(string(text))
	return nil
}

func (t StepType) String() string {
	if t == StepAction {
		return "Action"
	}
	return "Read"
}

// ParseStepType returns StepAction for "action" in any case, StepRead otherwise.
func ParseStepType(s string) StepType {
	if folder.String(s) == "action" {
		return StepAction
	}
	return StepRead
}

func (t StepType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *StepType) UnmarshalText(text []byte) error {
	*t = ParseStepType(string(text))
	return nil
}
