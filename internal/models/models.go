package models

import "time"

// Tier is the access level a guild member gets from role membership.
type Tier string

const (
	TierFree   Tier = "free"
	TierBronze Tier = "bronze"
	TierSilver Tier = "silver"
)

// TiersByPrecedence lists tiers highest first; the first role binding that
// matches wins during resolution.
var TiersByPrecedence = []Tier{TierSilver, TierBronze, TierFree}

// Service is one of the boost products the bot can order.
type Service string

const (
	ServiceViews   Service = "views"
	ServiceLikes   Service = "likes"
	ServiceShares  Service = "shares"
	ServiceFollows Service = "follows"
)

// Services lists every known service in display order.
var Services = []Service{ServiceViews, ServiceLikes, ServiceShares, ServiceFollows}

// OrderCommandNames lists the slash commands that place orders, in display order.
var OrderCommandNames = []string{"jviews", "jlikes", "jshares", "jfollow"}

// CommandService maps each order command to the service it purchases.
var CommandService = map[string]Service{
	"jviews":  ServiceViews,
	"jlikes":  ServiceLikes,
	"jshares": ServiceShares,
	"jfollow": ServiceFollows,
}

// DenyReason identifies which admission check rejected a request.
type DenyReason string

const (
	DenyWrongChannel       DenyReason = "wrong_channel"
	DenyNoAccess           DenyReason = "no_access"
	DenyServiceUnavailable DenyReason = "service_unavailable"
	DenyCooldownActive     DenyReason = "cooldown_active"
)

// DispatchStatus is the terminal state of a dispatch attempt.
type DispatchStatus string

const (
	StatusDenied DispatchStatus = "denied"
	StatusPlaced DispatchStatus = "placed"
	StatusFailed DispatchStatus = "failed"
)

// Order is a fully admitted request, ready to submit to the panel. It lives
// only for the duration of one dispatch; the panel's order ID is its only
// durable trace.
type Order struct {
	RequestID   string
	Command     string
	UserID      string
	DisplayName string
	Tier        Tier
	Service     Service
	ServiceID   string
	Link        string
	Quantity    int
	CreatedAt   time.Time
}

// Report is the outcome of a dispatch attempt. Reason and Remaining are set
// only when Status is StatusDenied; OrderID only when StatusPlaced; Failure
// carries the raw panel response or transport error when StatusFailed.
type Report struct {
	RequestID string
	Status    DispatchStatus
	Reason    DenyReason
	Remaining time.Duration
	Order     Order
	OrderID   string
	Failure   string
}

// Denied reports whether the request was rejected before submission.
func (r Report) Denied() bool { return r.Status == StatusDenied }
