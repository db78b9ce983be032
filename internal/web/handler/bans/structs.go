package bans

import (
	"time"

	"github.com/bandesk/bandesk/internal/apperr"
	"github.com/bandesk/bandesk/internal/ban"
	"github.com/bandesk/bandesk/internal/db/models"
	"github.com/bandesk/bandesk/internal/duration"
)

// dateLayout is the wire format of all date fields.
const dateLayout = "2006-01-02"

// createRequest is the JSON body of POST /bans.
type createRequest struct {
	PersonID           uint64   `json:"personId" validate:"required"`
	IncidentNumber     string   `json:"incidentNumber" validate:"required"`
	StartingDate       string   `json:"startingDate" validate:"required"`
	EndingDate         string   `json:"endingDate"`
	Motives            string   `json:"motives"`
	IncidentReport     string   `json:"incidentReport"`
	ActionTaken        string   `json:"actionTaken"`
	PeopleInvolved     string   `json:"peopleInvolved"`
	PoliceNotified     bool     `json:"policeNotified"`
	PoliceReportNumber string   `json:"policeReportNumber"`
	PlaceIDs           []uint64 `json:"placeIds" validate:"required,min=1"`
}

// updateRequest is the JSON body of PUT /bans/:id. Duration fields are an
// alternative way to express the new ending date; when present, the ending
// date is derived from the starting date.
type updateRequest struct {
	StartingDate       *string            `json:"startingDate"`
	EndingDate         *string            `json:"endingDate"`
	ClearEndingDate    bool               `json:"clearEndingDate"`
	Duration           *duration.Duration `json:"duration"`
	Motives            *string            `json:"motives"`
	IncidentReport     *string            `json:"incidentReport"`
	ActionTaken        *string            `json:"actionTaken"`
	PeopleInvolved     *string            `json:"peopleInvolved"`
	PoliceNotified     *bool              `json:"policeNotified"`
	PoliceReportNumber *string            `json:"policeReportNumber"`
	IsActive           *bool              `json:"isActive"`
}

// decisionRequest is the JSON body of POST /bans/:id/places/:placeId/decision.
type decisionRequest struct {
	Approve bool `json:"approve"`
}

// addPlaceRequest is the JSON body of POST /bans/:id/places.
type addPlaceRequest struct {
	PlaceID uint64 `json:"placeId" validate:"required"`
}

// approvalView is the JSON rendering of one place approval.
type approvalView struct {
	PlaceID     uint64     `json:"placeId"`
	PlaceName   string     `json:"placeName,omitempty"`
	Status      string     `json:"status"`
	DecidedByID *uint64    `json:"decidedById,omitempty"`
	DecidedAt   *time.Time `json:"decidedAt,omitempty"`
}

// banView is the JSON rendering of one ban record. Duration is always
// derived from the stored date range, never stored itself.
type banView struct {
	ID                 uint64             `json:"id"`
	PersonID           uint64             `json:"personId"`
	PersonName         string             `json:"personName,omitempty"`
	IncidentNumber     string             `json:"incidentNumber"`
	StartingDate       string             `json:"startingDate"`
	EndingDate         *string            `json:"endingDate,omitempty"`
	Duration           *duration.Duration `json:"duration,omitempty"`
	Motives            string             `json:"motives,omitempty"`
	IncidentReport     string             `json:"incidentReport,omitempty"`
	ActionTaken        string             `json:"actionTaken,omitempty"`
	PeopleInvolved     string             `json:"peopleInvolved,omitempty"`
	PoliceNotified     bool               `json:"policeNotified"`
	PoliceReportNumber string             `json:"policeReportNumber,omitempty"`
	IsActive           bool               `json:"isActive"`
	Status             string             `json:"status"`
	ViolationsCount    int                `json:"violationsCount"`
	ViolationDates     []time.Time        `json:"violationDates,omitempty"`
	Approvals          []approvalView     `json:"approvals"`
	CreatedAt          time.Time          `json:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt"`
}

// viewFor renders a ban record for the API.
func viewFor(record *models.Ban) banView {
	view := banView{
		ID:                 record.ID,
		PersonID:           record.PersonID,
		IncidentNumber:     record.IncidentNumber,
		StartingDate:       record.StartingDate.Format(dateLayout),
		Motives:            record.Motives,
		IncidentReport:     record.IncidentReport,
		ActionTaken:        record.ActionTaken,
		PeopleInvolved:     record.PeopleInvolved,
		PoliceNotified:     record.PoliceNotified,
		PoliceReportNumber: record.PoliceReportNumber,
		IsActive:           record.IsActive,
		Status:             string(record.OverallStatus()),
		ViolationsCount:    record.ViolationsCount,
		CreatedAt:          record.CreatedAt,
		UpdatedAt:          record.UpdatedAt,
		Approvals:          make([]approvalView, 0, len(record.Approvals)),
	}

	if record.Person.ID != 0 {
		view.PersonName = record.Person.DisplayName()
	}

	if record.EndingDate != nil {
		formatted := record.EndingDate.Format(dateLayout)
		view.EndingDate = &formatted

		if derived, err := duration.Derive(record.StartingDate, *record.EndingDate); err == nil {
			view.Duration = &derived
		}
	}

	for _, approval := range record.Approvals {
		item := approvalView{
			PlaceID:     approval.PlaceID,
			PlaceName:   approval.Place.Name,
			Status:      string(approval.Status),
			DecidedByID: approval.DecidedByID,
			DecidedAt:   approval.DecidedAt,
		}
		view.Approvals = append(view.Approvals, item)
	}

	for _, violation := range record.Violations {
		view.ViolationDates = append(view.ViolationDates, violation.OccurredAt)
	}

	return view
}

// parseDate parses a wire date and reports a ValidationError naming the field
// on failure.
func parseDate(field, value string) (time.Time, error) {
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, apperr.Validation(field, "expected date in format "+dateLayout)
	}

	return parsed, nil
}

// toCreateInput converts the request body into engine input.
func (r *createRequest) toCreateInput() (ban.CreateInput, error) {
	start, err := parseDate("startingDate", r.StartingDate)
	if err != nil {
		return ban.CreateInput{}, err
	}

	in := ban.CreateInput{
		PersonID:           r.PersonID,
		IncidentNumber:     r.IncidentNumber,
		StartingDate:       start,
		Motives:            r.Motives,
		IncidentReport:     r.IncidentReport,
		ActionTaken:        r.ActionTaken,
		PeopleInvolved:     r.PeopleInvolved,
		PoliceNotified:     r.PoliceNotified,
		PoliceReportNumber: r.PoliceReportNumber,
		PlaceIDs:           r.PlaceIDs,
	}

	if r.EndingDate != "" {
		end, endErr := parseDate("endingDate", r.EndingDate)
		if endErr != nil {
			return ban.CreateInput{}, endErr
		}

		in.EndingDate = &end
	}

	return in, nil
}

// toUpdateInput converts the request body into engine input. A duration edit
// is resolved into an ending date against the effective starting date before
// it reaches the engine, keeping the two representations in sync.
func (r *updateRequest) toUpdateInput(current *models.Ban) (ban.UpdateInput, error) {
	in := ban.UpdateInput{
		ClearEndingDate:    r.ClearEndingDate,
		Motives:            r.Motives,
		IncidentReport:     r.IncidentReport,
		ActionTaken:        r.ActionTaken,
		PeopleInvolved:     r.PeopleInvolved,
		PoliceNotified:     r.PoliceNotified,
		PoliceReportNumber: r.PoliceReportNumber,
		IsActive:           r.IsActive,
	}

	effectiveStart := current.StartingDate

	if r.StartingDate != nil {
		start, err := parseDate("startingDate", *r.StartingDate)
		if err != nil {
			return ban.UpdateInput{}, err
		}

		in.StartingDate = &start
		effectiveStart = start
	}

	if r.EndingDate != nil {
		end, err := parseDate("endingDate", *r.EndingDate)
		if err != nil {
			return ban.UpdateInput{}, err
		}

		in.EndingDate = &end
	}

	if r.Duration != nil {
		end, err := duration.EndDate(effectiveStart, *r.Duration)
		if err != nil {
			// the previously valid ending date is retained; nothing partial
			// is committed
			return ban.UpdateInput{}, err
		}

		in.EndingDate = &end
	}

	return in, nil
}
