package dispatch

import (
	"fmt"
	"strings"

	"github.com/workmate-ai/intake/internal/clarify"
	"github.com/workmate-ai/intake/internal/models"
)

// submitRoute is the resolved downstream target for one completed request.
type submitRoute struct {
	service string
	path    string
	payload map[string]any
}

// typeSpec is the per-request-type axis of variation: how to shape the
// payload and how to phrase the outcome. The transition logic in dispatch.go
// never branches on the type.
type typeSpec struct {
	actionType string
	route      func(p *clarify.PendingRequest) (submitRoute, error)
	success    func(p *clarify.PendingRequest) string
	failure    func(a models.Action) string
}

var typeSpecs = map[clarify.RequestType]typeSpec{
	clarify.TypeLeave: {
		actionType: "leave_request",
		route: func(p *clarify.PendingRequest) (submitRoute, error) {
			return submitRoute{
				service: "leave",
				path:    "/requests",
				payload: map[string]any{
					"leave_type": p.Filled["leave_type"],
					"start_date": p.Filled["start_date"],
					"end_date":   p.Filled["end_date"],
					"reason":     p.Filled["reason"],
				},
			}, nil
		},
		success: func(p *clarify.PendingRequest) string {
			return fmt.Sprintf("Leave request captured for %s leave from %s to %s.",
				fval(p.Filled["leave_type"]), fval(p.Filled["start_date"]), fval(p.Filled["end_date"]))
		},
		failure: failureMessage("Leave request failed", "The leave request could not be submitted."),
	},

	clarify.TypeExpense: {
		actionType: "expense_request",
		route: func(p *clarify.PendingRequest) (submitRoute, error) {
			return submitRoute{
				service: "expense",
				path:    "/expenses",
				payload: map[string]any{
					"amount":       p.Filled["amount"],
					"currency":     p.Filled["currency"],
					"date":         p.Filled["date"],
					"category":     p.Filled["category"],
					"project_code": p.Filled["project_code"],
				},
			}, nil
		},
		success: func(p *clarify.PendingRequest) string {
			return fmt.Sprintf("Expense logged for %s %s (%s) on %s.",
				fval(p.Filled["amount"]), fval(p.Filled["currency"]),
				fval(p.Filled["category"]), fval(p.Filled["date"]))
		},
		failure: failureMessage("Expense submission failed", "The expense could not be submitted."),
	},

	clarify.TypeTravel: {
		actionType: "travel_request",
		route: func(p *clarify.PendingRequest) (submitRoute, error) {
			return submitRoute{
				service: "expense",
				path:    "/travel-requests",
				payload: map[string]any{
					"origin":         p.Filled["origin"],
					"destination":    p.Filled["destination"],
					"departure_date": p.Filled["departure_date"],
					"return_date":    p.Filled["return_date"],
					"class":          p.Filled["class"],
				},
			}, nil
		},
		success: func(p *clarify.PendingRequest) string {
			return fmt.Sprintf("Travel request captured from %s to %s on %s.",
				fval(p.Filled["origin"]), fval(p.Filled["destination"]), fval(p.Filled["departure_date"]))
		},
		failure: failureMessage("Travel request failed", "The travel request could not be submitted."),
	},

	clarify.TypeTicket: {
		actionType: "ticket_request",
		route: func(p *clarify.PendingRequest) (submitRoute, error) {
			subtype := p.Subtype
			if subtype == "" {
				subtype = "it"
			}
			return submitRoute{
				service: "ticket",
				path:    "/tickets",
				payload: map[string]any{
					"type":        subtype,
					"description": p.Filled["description"],
					"location":    p.Filled["location"],
				},
			}, nil
		},
		success: func(p *clarify.PendingRequest) string {
			subtype := p.Subtype
			if subtype == "" {
				subtype = "it"
			}
			return fmt.Sprintf("Ticket captured for %s support.", subtype)
		},
		failure: failureMessage("Ticket submission failed", "The ticket could not be submitted."),
	},

	clarify.TypeAccess: {
		actionType: "access_request",
		route: func(p *clarify.PendingRequest) (submitRoute, error) {
			return submitRoute{
				service: "access",
				path:    "/access-requests",
				payload: map[string]any{
					"resource":       p.Filled["resource"],
					"requested_role": p.Filled["requested_role"],
					"justification":  p.Filled["justification"],
				},
			}, nil
		},
		success: func(p *clarify.PendingRequest) string {
			return fmt.Sprintf("Access request captured for %s with %s access.",
				fval(p.Filled["resource"]), fval(p.Filled["requested_role"]))
		},
		failure: failureMessage("Access request failed", "The access request could not be submitted."),
	},

	clarify.TypeWorkspaceBooking: {
		actionType: "workspace_booking",
		route:      workspaceRoute,
		success: func(p *clarify.PendingRequest) string {
			return fmt.Sprintf("Booking confirmed for %s %s from %s to %s.",
				fval(p.Filled["resource_type"]), fval(p.Filled["resource_name"]),
				fval(p.Filled["start_time"]), fval(p.Filled["end_time"]))
		},
		failure: failureMessage("Booking failed", "The booking could not be created."),
	},
}

// workspaceRoute picks the booking endpoint by resource type.
func workspaceRoute(p *clarify.PendingRequest) (submitRoute, error) {
	resourceType := strings.ToLower(fval(p.Filled["resource_type"]))
	resourceName := fval(p.Filled["resource_name"])
	startTime := p.Filled["start_time"]
	endTime := p.Filled["end_time"]

	if resourceType == "" || resourceName == "" || startTime == nil || endTime == nil {
		return submitRoute{}, fmt.Errorf("missing required fields")
	}

	base := map[string]any{
		"resource_name": resourceName,
		"start_time":    startTime,
		"end_time":      endTime,
	}

	switch resourceType {
	case "room":
		return submitRoute{service: "workspace", path: "/rooms/" + resourceName + "/book", payload: base}, nil
	case "desk":
		return submitRoute{service: "workspace", path: "/desks/book", payload: base}, nil
	case "equipment":
		return submitRoute{service: "workspace", path: "/equipment/reserve", payload: base}, nil
	case "parking":
		return submitRoute{service: "workspace", path: "/parking/book", payload: base}, nil
	default:
		return submitRoute{}, fmt.Errorf("unknown resource_type: %s", resourceType)
	}
}

func failureMessage(prefix, fallback string) func(a models.Action) string {
	return func(a models.Action) string {
		errMsg := a.Error
		if errMsg == "" {
			errMsg = fallback
		}
		return fmt.Sprintf("%s: %s", prefix, errMsg)
	}
}

// fval renders a filled value for user-facing copy.
func fval(value any) string {
	if value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", value)
}

func domainIntro(domain string) string {
	switch domain {
	case "hr":
		return "HR help:\n" +
			"- Create or update leave requests (annual, sick, unpaid)\n" +
			"- Check leave balances and status\n" +
			"- Answer HR policy questions\n" +
			"Examples: \"I need sick leave next Monday\", \"How many vacation days do I have left?\""
	case "ops":
		return "Operations help:\n" +
			"- Log expenses and attach receipts\n" +
			"- Create travel requests (flights, hotels)\n" +
			"- Explain travel/expense policy limits\n" +
			"Examples: \"Add a $45 taxi from yesterday\", \"Book a flight to Singapore next Monday\""
	case "it":
		return "IT help:\n" +
			"- File IT tickets or facilities tickets\n" +
			"- Troubleshoot common issues (VPN, Wi-Fi, laptop)\n" +
			"- Create access requests for systems/repos\n" +
			"Examples: \"VPN keeps dropping\", \"I need write access to Repo X\""
	case "workspace":
		return "Workspace help:\n" +
			"- Book meeting rooms, desks, parking, equipment\n" +
			"- Raise facilities issues (AC, lights, etc.)\n" +
			"Examples: \"Book a room for 6 people at 3pm\", \"The AC is broken in Room 12\""
	case "doc_qa":
		return "Document Q&A:\n" +
			"- Answer questions over uploaded documents and policies\n" +
			"- Search user docs with filters\n" +
			"Examples: \"What is the per diem limit?\", \"Summarize the onboarding PDF\""
	}
	return "Hello. I can help with: HR (leave, policies), Operations (expenses, travel), IT (tickets, access), " +
		"Workspace (rooms, desks, facilities), and Document Q&A.\n" +
		"Try: \"I need sick leave tomorrow\", \"Log a $30 meal expense\", \"VPN not working\", " +
		"\"Book a room at 2pm\", or \"What's our travel policy per diem?\""
}
