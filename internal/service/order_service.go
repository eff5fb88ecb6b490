package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jeetlabs/jeetbot/internal/config"
	"github.com/jeetlabs/jeetbot/internal/metrics"
	"github.com/jeetlabs/jeetbot/internal/models"
	"github.com/jeetlabs/jeetbot/internal/smm"
)

// AuditSink receives a notification for every successfully placed order.
// Delivery is best effort; a sink failure never changes the order outcome.
type AuditSink interface {
	OrderPlaced(ctx context.Context, order models.Order, orderID string) error
}

// Request is one inbound command invocation, already stripped of any
// platform-specific types so the pipeline can run without a live connection.
type Request struct {
	Command     string
	UserID      string
	DisplayName string
	Roles       []string
	ChannelID   string
	Link        string
}

// Denial explains an admission rejection. Remaining is set only for
// cooldown denials.
type Denial struct {
	Reason    models.DenyReason
	Remaining time.Duration
}

// OrderService runs the admission chain and submits admitted orders to the
// panel. Checks run in a fixed order (channel, tier, quota, cooldown) and the
// chain short-circuits on the first failure. Quota runs before cooldown so a
// request denied for zero quota never burns its cooldown slot; the cooldown
// is marked at admission, before the panel call, and is never rolled back.
type OrderService struct {
	cfg       config.Config
	log       *slog.Logger
	tiers     *TierResolver
	cooldowns *CooldownTracker
	quotas    *QuotaTable
	panel     *smm.Client
	audit     AuditSink
}

func NewOrderService(cfg config.Config, log *slog.Logger, tiers *TierResolver, cooldowns *CooldownTracker, quotas *QuotaTable, panel *smm.Client, audit AuditSink) *OrderService {
	return &OrderService{
		cfg:       cfg,
		log:       log,
		tiers:     tiers,
		cooldowns: cooldowns,
		quotas:    quotas,
		panel:     panel,
		audit:     audit,
	}
}

// Admit runs the admission chain for req. A nil Denial means the request
// passed every check, its cooldown slot is consumed, and the returned order
// is ready for Submit.
func (s *OrderService) Admit(req Request) (models.Order, *Denial) {
	service := models.CommandService[req.Command]

	if req.ChannelID != s.cfg.AllowedChannelID {
		return models.Order{}, s.deny(req, models.DenyWrongChannel, 0)
	}

	tier, ok := s.tiers.Resolve(req.Roles)
	if !ok {
		return models.Order{}, s.deny(req, models.DenyNoAccess, 0)
	}

	quantity := s.quotas.Quantity(tier, service)
	if quantity == 0 {
		return models.Order{}, s.deny(req, models.DenyServiceUnavailable, 0)
	}

	outcome := s.cooldowns.CheckAndMark(req.Command, req.UserID)
	if !outcome.Allowed {
		return models.Order{}, s.deny(req, models.DenyCooldownActive, outcome.Remaining)
	}

	order := models.Order{
		RequestID:   uuid.NewString(),
		Command:     req.Command,
		UserID:      req.UserID,
		DisplayName: req.DisplayName,
		Tier:        tier,
		Service:     service,
		ServiceID:   s.cfg.ServiceIDs[service],
		Link:        req.Link,
		Quantity:    quantity,
	}

	s.log.Info("order admitted",
		"request_id", order.RequestID,
		"command", order.Command,
		"user", order.UserID,
		"tier", order.Tier,
		"service", order.Service,
		"quantity", order.Quantity,
	)
	return order, nil
}

// Submit sends an admitted order to the panel and interprets the response.
// Failures are terminal and reported as-is; they are never retried and the
// cooldown consumed at admission stays consumed.
func (s *OrderService) Submit(ctx context.Context, order models.Order) models.Report {
	report := models.Report{
		RequestID: order.RequestID,
		Order:     order,
	}

	result, err := s.panel.PlaceOrder(ctx, order.ServiceID, order.Link, order.Quantity)
	if err != nil {
		s.log.Error("panel submission failed", "request_id", order.RequestID, "err", err)
		metrics.OrdersTotal.WithLabelValues(string(order.Service), string(models.StatusFailed)).Inc()
		report.Status = models.StatusFailed
		report.Failure = err.Error()
		return report
	}

	if !result.Accepted() {
		metrics.OrdersTotal.WithLabelValues(string(order.Service), string(models.StatusFailed)).Inc()
		report.Status = models.StatusFailed
		report.Failure = result.Raw
		return report
	}

	metrics.OrdersTotal.WithLabelValues(string(order.Service), string(models.StatusPlaced)).Inc()
	report.Status = models.StatusPlaced
	report.OrderID = result.OrderID

	s.log.Info("order placed",
		"request_id", order.RequestID,
		"order_id", result.OrderID,
		"service", order.Service,
		"quantity", order.Quantity,
	)

	if s.audit != nil {
		if err := s.audit.OrderPlaced(ctx, order, result.OrderID); err != nil {
			s.log.Error("audit notification failed", "request_id", order.RequestID, "err", err)
		}
	}

	return report
}

// Dispatch is Admit followed by Submit in one call, for callers that do not
// need to acknowledge the user between admission and submission.
func (s *OrderService) Dispatch(ctx context.Context, req Request) models.Report {
	order, denial := s.Admit(req)
	if denial != nil {
		return models.Report{
			Status:    models.StatusDenied,
			Reason:    denial.Reason,
			Remaining: denial.Remaining,
		}
	}
	return s.Submit(ctx, order)
}

func (s *OrderService) deny(req Request, reason models.DenyReason, remaining time.Duration) *Denial {
	metrics.AdmissionDenialsTotal.WithLabelValues(req.Command, string(reason)).Inc()
	s.log.Info("request denied",
		"command", req.Command,
		"user", req.UserID,
		"reason", reason,
	)
	return &Denial{Reason: reason, Remaining: remaining}
}
