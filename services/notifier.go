package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yeremiapane/restaurant-site/models"
	"github.com/yeremiapane/restaurant-site/utils"
	"gorm.io/gorm"
)

const (
	notificationSent   = "sent"
	notificationFailed = "failed"
)

// CheckoutCreator creates hosted payment sessions.
type CheckoutCreator interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	Currency() string
}

// Notifier renders and sends the transactional emails and records each attempt.
type Notifier struct {
	db       *gorm.DB
	sender   EmailSender
	checkout CheckoutCreator
	renderer *EmailRenderer
	from     string
	siteURL  string
}

func NewNotifier(db *gorm.DB, sender EmailSender, checkout CheckoutCreator, renderer *EmailRenderer, from, siteURL string) *Notifier {
	return &Notifier{
		db:       db,
		sender:   sender,
		checkout: checkout,
		renderer: renderer,
		from:     from,
		siteURL:  strings.TrimRight(siteURL, "/"),
	}
}

func (n *Notifier) deliver(ctx context.Context, kind, reference, to, subject, html string) (string, error) {
	entry := models.NotificationLog{
		Kind:      kind,
		Recipient: to,
		Subject:   subject,
		Reference: reference,
		Status:    notificationSent,
	}

	id, err := n.sender.Send(ctx, EmailMessage{From: n.from, To: to, Subject: subject, HTML: html})
	if err != nil {
		entry.Status = notificationFailed
		entry.Error = err.Error()
		utils.ErrorLogger.Errorf("Error sending %s email to %s: %v", kind, to, err)
	} else {
		entry.ProviderID = id
		utils.InfoLogger.Printf("Sent %s email to %s (id=%s)", kind, to, id)
	}

	if logErr := n.db.WithContext(ctx).Create(&entry).Error; logErr != nil {
		utils.ErrorLogger.Errorf("Error recording notification log: %v", logErr)
	}
	return id, err
}

// SendBookingConfirmation emails the confirmation for an order or reservation.
func (n *Notifier) SendBookingConfirmation(ctx context.Context, p BookingConfirmationPayload) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}
	subject, html, err := n.renderer.BookingConfirmation(p)
	if err != nil {
		return "", err
	}
	return n.deliver(ctx, models.NotificationBookingConfirmation, p.BookingType+":"+p.OrderID.String(), p.CustomerEmail, subject, html)
}

func (n *Notifier) SendCancellation(ctx context.Context, p CancellationPayload) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}
	subject, html, err := n.renderer.Cancellation(p)
	if err != nil {
		return "", err
	}
	return n.deliver(ctx, models.NotificationCancellation, p.BookingType+":"+p.OrderID.String(), p.CustomerEmail, subject, html)
}

type PaymentLinkResult struct {
	SessionID  string `json:"sessionId"`
	PaymentURL string `json:"paymentUrl"`
	EmailID    string `json:"emailId"`
}

// SendPaymentLink creates a checkout session for the items, stores it and
// emails the hosted payment URL to the customer.
func (n *Notifier) SendPaymentLink(ctx context.Context, p PaymentLinkPayload) (*PaymentLinkResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p.SuccessURL == "" {
		p.SuccessURL = fmt.Sprintf("%s/payment/success?order=%s", n.siteURL, p.OrderID)
	}
	if p.CancelURL == "" {
		p.CancelURL = fmt.Sprintf("%s/payment/cancelled?order=%s", n.siteURL, p.OrderID)
	}
	if p.TotalAmount == 0 {
		p.TotalAmount = p.ItemsTotal()
	}

	req := CheckoutRequest{
		OrderID:       p.OrderID.String(),
		CustomerEmail: p.CustomerEmail,
		SuccessURL:    p.SuccessURL,
		CancelURL:     p.CancelURL,
	}
	for _, item := range p.Items {
		req.Items = append(req.Items, CheckoutLineItem{
			Name:       item.Name,
			UnitAmount: utils.ToMinorUnits(item.Price),
			Quantity:   int64(item.Quantity),
		})
	}

	session, err := n.checkout.CreateCheckoutSession(ctx, req)
	if err != nil {
		utils.ErrorLogger.Errorf("Error creating checkout session for order %s: %v", p.OrderID, err)
		return nil, err
	}

	link := models.PaymentLink{
		Reference:    p.OrderID.String(),
		SessionID:    session.ID,
		URL:          session.URL,
		Currency:     n.checkout.Currency(),
		AmountMinor:  session.AmountTotal,
		CustomerMail: p.CustomerEmail,
	}
	if link.AmountMinor == 0 {
		link.AmountMinor = utils.ToMinorUnits(p.ItemsTotal())
	}
	if err := n.db.WithContext(ctx).Create(&link).Error; err != nil {
		utils.ErrorLogger.Errorf("Error saving payment link for order %s: %v", p.OrderID, err)
	}

	subject, html, err := n.renderer.PaymentLink(p, session.URL)
	if err != nil {
		return nil, err
	}
	emailID, err := n.deliver(ctx, models.NotificationPaymentLink, p.OrderID.String(), p.CustomerEmail, subject, html)
	if err != nil {
		return nil, err
	}
	return &PaymentLinkResult{SessionID: session.ID, PaymentURL: session.URL, EmailID: emailID}, nil
}

func (n *Notifier) SendPasswordReset(ctx context.Context, email, link string) error {
	subject, html, err := n.renderer.PasswordReset(link)
	if err != nil {
		return err
	}
	_, err = n.deliver(ctx, models.NotificationPasswordReset, email, email, subject, html)
	return err
}

// PaymentLinkFromOrder prices the payment link for everything still owed on the order.
func PaymentLinkFromOrder(order models.Order) PaymentLinkPayload {
	p := PaymentLinkPayload{
		OrderID:       FlexibleID(fmt.Sprintf("%d", order.ID)),
		CustomerName:  order.CustomerName,
		CustomerEmail: order.CustomerEmail,
		TotalAmount:   order.FinalTotal,
	}
	for _, item := range order.Items {
		p.Items = append(p.Items, EmailItem{Name: item.Name, Quantity: item.Quantity, Price: item.Price})
	}
	if order.AsapCharge > 0 {
		p.Items = append(p.Items, EmailItem{Name: "ASAP Charge", Quantity: 1, Price: order.AsapCharge})
	}
	return p
}

// PaymentLinkFromReservation charges the amount due now: the deposit for a
// deposit booking, the full total otherwise.
func PaymentLinkFromReservation(r models.Reservation) PaymentLinkPayload {
	amount := r.TotalAmount
	label := "Reservation payment"
	if r.PaymentOption == models.PaymentOptionDeposit {
		amount = r.DepositAmount
		label = "Reservation deposit"
	}
	return PaymentLinkPayload{
		OrderID:       FlexibleID(fmt.Sprintf("R%d", r.ID)),
		CustomerName:  r.CustomerName,
		CustomerEmail: r.CustomerEmail,
		Items: []EmailItem{{
			Name:     fmt.Sprintf("%s %s %s", label, r.ReservationDate, r.ReservationTime),
			Quantity: 1,
			Price:    amount,
		}},
		TotalAmount: amount,
	}
}

// CancellationFromOrder and CancellationFromReservation build the cancellation payloads.
func CancellationFromOrder(order models.Order, reason string) CancellationPayload {
	p := CancellationPayload{
		BookingType:   BookingTypeOrder,
		OrderID:       FlexibleID(fmt.Sprintf("%d", order.ID)),
		CustomerName:  order.CustomerName,
		CustomerEmail: order.CustomerEmail,
		Reason:        reason,
		TotalAmount:   order.FinalTotal,
	}
	if order.PaymentStatus == models.PaymentStatusPaid {
		p.RefundAmount = order.FinalTotal
	}
	return p
}

func CancellationFromReservation(r models.Reservation, reason string) CancellationPayload {
	p := CancellationPayload{
		BookingType:     BookingTypeReservation,
		OrderID:         FlexibleID(fmt.Sprintf("%d", r.ID)),
		CustomerName:    r.CustomerName,
		CustomerEmail:   r.CustomerEmail,
		Reason:          reason,
		ReservationDate: r.ReservationDate,
		ReservationTime: r.ReservationTime,
		TotalAmount:     r.TotalAmount,
	}
	switch r.PaymentStatus {
	case models.PaymentStatusPaid:
		p.RefundAmount = r.TotalAmount
	case models.PaymentStatusPartial:
		p.RefundAmount = r.DepositAmount
	}
	return p
}
