package domain

import (
	"context"
	"time"
)

// Event is a scheduled happening at a premise, tagged with categories.
// swagger:model Event
type Event struct {
	ID            int64       `json:"id"`
	Title         string      `json:"title" validate:"required,min=2,max=255"`
	Description   *string     `json:"description"`
	ImageURL      string      `json:"image_url" validate:"required,http_url,max=255"`
	Capacity      int         `json:"capacity" validate:"gt=0,lte=10000"`
	StartDatetime time.Time   `json:"start_datetime" validate:"required"`
	EndDatetime   time.Time   `json:"end_datetime" validate:"required,gtfield=StartDatetime"`
	PremiseID     int64       `json:"premise_id" validate:"required"`
	Premise       *Premise    `json:"premise"`
	ManagerID     int64       `json:"manager_id"`
	Categories    []*Category `json:"categories"`
}

// CategoryIDs returns the ids of the attached categories.
func (e *Event) CategoryIDs() []int64 {
	ids := make([]int64, 0, len(e.Categories))
	for _, c := range e.Categories {
		ids = append(ids, c.ID)
	}
	return ids
}

// SetCategoryIDs replaces the attached categories with id-only references.
func (e *Event) SetCategoryIDs(ids []int64) {
	e.Categories = make([]*Category, 0, len(ids))
	for _, id := range ids {
		e.Categories = append(e.Categories, &Category{ID: id})
	}
}

// EventFilter narrows an event listing. Zero values mean "no filter".
type EventFilter struct {
	CategoryID *int64
	City       string
}

// EventPage is one page of a listing plus the total number of matching events.
type EventPage struct {
	Items      []*Event `json:"items"`
	TotalCount int      `json:"total_count"`
}

// EventInput carries the fields accepted when creating an event.
type EventInput struct {
	Title         string
	Description   *string
	ImageURL      string
	Capacity      int
	StartDatetime time.Time
	EndDatetime   time.Time
	PremiseID     int64
	CategoryIDs   []int64
}

// EventPatch carries the fields of an update. Nil fields keep the stored value;
// a non-nil CategoryIDs replaces the whole category set.
type EventPatch struct {
	Title         *string
	Description   *string
	ImageURL      *string
	Capacity      *int
	StartDatetime *time.Time
	EndDatetime   *time.Time
	PremiseID     *int64
	CategoryIDs   *[]int64
}

// Apply merges the patch into e.
func (p EventPatch) Apply(e *Event) {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Description != nil {
		e.Description = p.Description
	}
	if p.ImageURL != nil {
		e.ImageURL = *p.ImageURL
	}
	if p.Capacity != nil {
		e.Capacity = *p.Capacity
	}
	if p.StartDatetime != nil {
		e.StartDatetime = *p.StartDatetime
	}
	if p.EndDatetime != nil {
		e.EndDatetime = *p.EndDatetime
	}
	if p.PremiseID != nil && *p.PremiseID != e.PremiseID {
		e.PremiseID = *p.PremiseID
		e.Premise = nil
	}
	if p.CategoryIDs != nil {
		e.SetCategoryIDs(*p.CategoryIDs)
	}
}

// EventRepository defines the interface for event storage.
// Create and Update write the event row and its category links atomically;
// category ids that do not exist are dropped.
type EventRepository interface {
	List(ctx context.Context, filter EventFilter, page PaginationParams) (*EventPage, error)
	GetByID(ctx context.Context, id int64) (*Event, error)
	Create(ctx context.Context, e *Event) error
	Update(ctx context.Context, e *Event, replaceCategories bool) error
	Delete(ctx context.Context, id int64) error
	ListByAttendee(ctx context.Context, userID int64) ([]*Event, error)
}

// EventListCache caches listing pages under a generation that Invalidate advances.
// Get reports the generation it read and Set files the page under that generation,
// so a page loaded before an invalidation is never served after it.
type EventListCache interface {
	Get(ctx context.Context, filter EventFilter, page PaginationParams) (result *EventPage, gen int64, hit bool, err error)
	Set(ctx context.Context, gen int64, filter EventFilter, page PaginationParams, result *EventPage) error
	Invalidate(ctx context.Context) error
}

// EventService is the business API for events.
type EventService interface {
	List(ctx context.Context, filter EventFilter, page PaginationParams) (*EventPage, error)
	Get(ctx context.Context, id int64) (*Event, error)
	Create(ctx context.Context, actor *Identity, in EventInput) (*Event, error)
	Update(ctx context.Context, actor *Identity, id int64, patch EventPatch) (*Event, error)
	Delete(ctx context.Context, actor *Identity, id int64) error
	ListRegistered(ctx context.Context, actor *Identity) ([]*Event, error)
}
