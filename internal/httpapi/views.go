package httpapi

import (
	"time"

	"github.com/homilybuild/homily/internal/domain"
	"github.com/homilybuild/homily/internal/service"
	"github.com/homilybuild/homily/internal/wizard"
)

type homilyView struct {
	ID string `json:"id"`
	domain.DraftRecord
	Status      domain.Status `json:"status"`
	StatusLabel string        `json:"statusLabel"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

func newHomilyView(h *domain.Homily) homilyView {
	return homilyView{
		ID:          h.ID,
		DraftRecord: h.DraftRecord,
		Status:      h.Status,
		StatusLabel: h.Status.Label(),
		CreatedAt:   h.CreatedAt,
		UpdatedAt:   h.UpdatedAt,
	}
}

func newHomilyViews(hs []*domain.Homily) []homilyView {
	out := make([]homilyView, 0, len(hs))
	for _, h := range hs {
		out = append(out, newHomilyView(h))
	}
	return out
}

type pageView struct {
	Items       []homilyView `json:"items"`
	Total       int          `json:"total"`
	TotalPages  int          `json:"totalPages"`
	CurrentPage int          `json:"currentPage"`
	PageSize    int          `json:"pageSize"`
}

func newPageView(p *service.Page) pageView {
	return pageView{
		Items:       newHomilyViews(p.Items),
		Total:       p.Total,
		TotalPages:  p.TotalPages,
		CurrentPage: p.CurrentPage,
		PageSize:    p.PageSize,
	}
}

type dashboardView struct {
	Total  int                   `json:"total"`
	Counts map[domain.Status]int `json:"counts"`
	Recent []homilyView          `json:"recent"`
}

type contextView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newContextView(c *domain.PreachingContext) contextView {
	return contextView{
		ID:        c.ID,
		Name:      c.Name,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

type settingsView struct {
	Definitions        string  `json:"definitions"`
	UsesDefault        bool    `json:"usesDefaultDefinitions"`
	DefaultContextID   *string `json:"defaultContextId"`
	DefaultDefinitions string  `json:"builtinDefinitions"`
	// ContextTemplate pre-fills the editor for a new context.
	ContextTemplate string `json:"contextTemplate"`
}

func newSettingsView(s *domain.UserSettings) settingsView {
	return settingsView{
		Definitions:        s.EffectiveDefinitions(),
		UsesDefault:        s.UsesDefaultDefinitions(),
		DefaultContextID:   s.DefaultContextID,
		DefaultDefinitions: domain.DefaultDefinitions,
		ContextTemplate:    domain.DefaultContextTemplate,
	}
}

type stepView struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	RequiredField string `json:"requiredField,omitempty"`
	GenerateField string `json:"generateField,omitempty"`
}

// sessionView is the state a wizard page renders from.
type sessionView struct {
	HomilyID      string                `json:"homilyId"`
	Step          int                   `json:"step"`
	Steps         []stepView            `json:"steps"`
	Record        domain.DraftRecord    `json:"record"`
	Status        domain.Status         `json:"status"`
	Saving        bool                  `json:"saving"`
	Generating    []int                 `json:"generating"`
	Finished      bool                  `json:"finished"`
	Location      string                `json:"location"`
	Notifications []wizard.Notification `json:"notifications"`
}

func newSessionView(handle *service.WizardHandle) sessionView {
	s := handle.Session
	defs := s.Steps().All()
	steps := make([]stepView, 0, len(defs))
	for _, d := range defs {
		steps = append(steps, stepView{
			ID:            d.ID,
			Name:          d.Name,
			RequiredField: string(d.RequiredField),
			GenerateField: string(d.GenerateField),
		})
	}
	saving, generating := s.Busy()
	if generating == nil {
		generating = []int{}
	}
	notes := handle.Inbox.Drain()
	if notes == nil {
		notes = []wizard.Notification{}
	}
	return sessionView{
		HomilyID:      s.HomilyID(),
		Step:          s.Step(),
		Steps:         steps,
		Record:        s.Record(),
		Status:        s.Status(),
		Saving:        saving,
		Generating:    generating,
		Finished:      s.Finished(),
		Location:      handle.Navigator.Location(),
		Notifications: notes,
	}
}
