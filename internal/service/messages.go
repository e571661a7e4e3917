package service

import (
	"fmt"
	"strings"

	"github.com/fsdevblog/groph-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

func orderTitle(o *domain.Order) string {
	return fmt.Sprintf("%s order #%d", o.Kind, o.ID)
}

func transitionChatText(o *domain.Order, prev domain.OrderStatusType, delta decimal.Decimal, actorID int64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s -> %s (user %d, total %s)", orderTitle(o), prev, o.Status, o.UserID,
		o.Amount.StringFixed(2))
	if !delta.IsZero() {
		fmt.Fprintf(&b, ", balance %s", delta.StringFixed(2))
	}
	fmt.Fprintf(&b, ", by admin %d", actorID)
	if o.AdminNote != "" {
		fmt.Fprintf(&b, "\nnote: %s", o.AdminNote)
	}
	return b.String()
}

func refundEmail(u *domain.User, o *domain.Order, refund decimal.Decimal) domain.EmailPayload {
	return domain.EmailPayload{
		To:      u.Email,
		Subject: fmt.Sprintf("Your %s was cancelled", orderTitle(o)),
		Body: fmt.Sprintf("Hello %s,\n\nyour %s was cancelled. %s was returned to your balance.\n"+
			"Current balance: %s.\n", u.Username, orderTitle(o), refund.StringFixed(2), u.Balance.StringFixed(2)),
	}
}

func credentialsEmail(u *domain.User, o *domain.Order, login, password string) domain.EmailPayload {
	return domain.EmailPayload{
		To:      u.Email,
		Subject: fmt.Sprintf("Your %s is ready", orderTitle(o)),
		Body: fmt.Sprintf("Hello %s,\n\nyour %s is completed. Sign in with:\n\nlogin: %s\npassword: %s\n",
			u.Username, orderTitle(o), login, password),
	}
}

func accountReusedEmail(u *domain.User, o *domain.Order, login string) domain.EmailPayload {
	return domain.EmailPayload{
		To:      u.Email,
		Subject: fmt.Sprintf("Your %s is ready", orderTitle(o)),
		Body: fmt.Sprintf("Hello %s,\n\nyour %s is completed and added to your account %s.\n",
			u.Username, orderTitle(o), login),
	}
}

func deliveryEmail(u *domain.User, o *domain.Order) domain.EmailPayload {
	return domain.EmailPayload{
		To:      u.Email,
		Subject: fmt.Sprintf("Your %s is completed", orderTitle(o)),
		Body: fmt.Sprintf("Hello %s,\n\nyour %s (%s x%d) is completed.\n",
			u.Username, orderTitle(o), o.SKU, o.Quantity),
	}
}

func balanceRequestEmail(u *domain.User, r *domain.BalanceRequest) domain.EmailPayload {
	if r.Status == domain.BalanceRequestApproved {
		return domain.EmailPayload{
			To:      u.Email,
			Subject: fmt.Sprintf("Balance request #%d approved", r.ID),
			Body: fmt.Sprintf("Hello %s,\n\n%s was added to your balance. Current balance: %s.\n",
				u.Username, r.Amount.StringFixed(2), u.Balance.StringFixed(2)),
		}
	}
	body := fmt.Sprintf("Hello %s,\n\nyour balance request of %s was rejected.\n", u.Username, r.Amount.StringFixed(2))
	if r.AdminNote != "" {
		body += fmt.Sprintf("Reason: %s\n", r.AdminNote)
	}
	return domain.EmailPayload{
		To:      u.Email,
		Subject: fmt.Sprintf("Balance request #%d rejected", r.ID),
		Body:    body,
	}
}

func balanceRequestChatText(r *domain.BalanceRequest) string {
	by := "gateway"
	if r.ProcessedBy != nil && *r.ProcessedBy != domain.SystemActorID {
		by = fmt.Sprintf("admin %d", *r.ProcessedBy)
	}
	return fmt.Sprintf("balance request #%d of user %d: %s %s (%s) by %s",
		r.ID, r.UserID, r.Status, r.Amount.StringFixed(2), r.PaymentMethod, by)
}

func webhookPayload(event string, o *domain.Order, prev domain.OrderStatusType) domain.WebhookPayload {
	return domain.WebhookPayload{
		Event:             event,
		OrderID:           o.ID,
		OrderKind:         o.Kind,
		Status:            o.Status,
		PreviousStatus:    prev,
		ExternalReference: o.ExternalReference,
		SKU:               o.SKU,
		Quantity:          o.Quantity,
		Total:             o.Amount,
		AdminNote:         o.AdminNote,
	}
}
