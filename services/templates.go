package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/mail"
	"strconv"
	"strings"

	"github.com/yeremiapane/restaurant-site/models"
	"github.com/yeremiapane/restaurant-site/utils"
)

// FlexibleID accepts an identifier sent either as a JSON string or number.
type FlexibleID string

func (id *FlexibleID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = FlexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number")
	}
	*id = FlexibleID(n.String())
	return nil
}

func (id FlexibleID) String() string { return string(id) }

type EmailItem struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

const (
	BookingTypeOrder       = "order"
	BookingTypeReservation = "reservation"
)

var ErrInvalidPayload = errors.New("invalid payload")

func payloadError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidPayload, fmt.Sprintf(format, args...))
}

func validateRecipient(orderID FlexibleID, name, email string) error {
	if strings.TrimSpace(string(orderID)) == "" {
		return payloadError("orderId is required")
	}
	if strings.TrimSpace(name) == "" {
		return payloadError("customerName is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return payloadError("customerEmail is invalid")
	}
	return nil
}

func validateItems(items []EmailItem, required bool) error {
	if required && len(items) == 0 {
		return payloadError("items must not be empty")
	}
	for i, item := range items {
		if strings.TrimSpace(item.Name) == "" {
			return payloadError("items[%d].name is required", i)
		}
		if item.Quantity <= 0 {
			return payloadError("items[%d].quantity must be positive", i)
		}
		if item.Price < 0 {
			return payloadError("items[%d].price must not be negative", i)
		}
	}
	return nil
}

type BookingConfirmationPayload struct {
	BookingType     string      `json:"bookingType"`
	OrderID         FlexibleID  `json:"orderId"`
	CustomerName    string      `json:"customerName"`
	CustomerEmail   string      `json:"customerEmail"`
	Items           []EmailItem `json:"items"`
	TotalAmount     float64     `json:"totalAmount"`
	AsapCharge      float64     `json:"asapCharge"`
	DepositAmount   float64     `json:"depositAmount"`
	RemainingAmount float64     `json:"remainingAmount"`
	PaymentStatus   string      `json:"paymentStatus"`
	OrderType       string      `json:"orderType"`
	PickupTime      string      `json:"pickupTime"`
	ReservationDate string      `json:"reservationDate"`
	ReservationTime string      `json:"reservationTime"`
	PartySize       int         `json:"partySize"`
	TableNumber     int         `json:"tableNumber"`
}

func (p *BookingConfirmationPayload) Validate() error {
	if err := validateRecipient(p.OrderID, p.CustomerName, p.CustomerEmail); err != nil {
		return err
	}
	if p.BookingType == "" {
		p.BookingType = BookingTypeOrder
		if p.ReservationDate != "" {
			p.BookingType = BookingTypeReservation
		}
	}
	if p.BookingType != BookingTypeOrder && p.BookingType != BookingTypeReservation {
		return payloadError("bookingType must be order or reservation")
	}
	switch p.PaymentStatus {
	case "", models.PaymentStatusPending, models.PaymentStatusPaid, models.PaymentStatusPartial:
	default:
		return payloadError("paymentStatus must be pending, partial or paid")
	}
	if p.TotalAmount < 0 || p.DepositAmount < 0 || p.RemainingAmount < 0 {
		return payloadError("amounts must not be negative")
	}
	return validateItems(p.Items, false)
}

type CancellationPayload struct {
	BookingType     string     `json:"bookingType"`
	OrderID         FlexibleID `json:"orderId"`
	CustomerName    string     `json:"customerName"`
	CustomerEmail   string     `json:"customerEmail"`
	Reason          string     `json:"reason"`
	ReservationDate string     `json:"reservationDate"`
	ReservationTime string     `json:"reservationTime"`
	TotalAmount     float64    `json:"totalAmount"`
	RefundAmount    float64    `json:"refundAmount"`
}

func (p *CancellationPayload) Validate() error {
	if err := validateRecipient(p.OrderID, p.CustomerName, p.CustomerEmail); err != nil {
		return err
	}
	if p.BookingType == "" {
		p.BookingType = BookingTypeOrder
		if p.ReservationDate != "" {
			p.BookingType = BookingTypeReservation
		}
	}
	if p.RefundAmount < 0 {
		return payloadError("refundAmount must not be negative")
	}
	return nil
}

type PaymentLinkPayload struct {
	OrderID       FlexibleID  `json:"orderId"`
	CustomerName  string      `json:"customerName"`
	CustomerEmail string      `json:"customerEmail"`
	Items         []EmailItem `json:"items"`
	TotalAmount   float64     `json:"totalAmount"`
	SuccessURL    string      `json:"successUrl"`
	CancelURL     string      `json:"cancelUrl"`
}

func (p *PaymentLinkPayload) Validate() error {
	if err := validateRecipient(p.OrderID, p.CustomerName, p.CustomerEmail); err != nil {
		return err
	}
	return validateItems(p.Items, true)
}

// ItemsTotal sums the line items.
func (p *PaymentLinkPayload) ItemsTotal() float64 {
	var total float64
	for _, item := range p.Items {
		total += item.Price * float64(item.Quantity)
	}
	return utils.Round2(total)
}

const layoutTemplate = `{{define "layout"}}<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Subject}}</title></head>
<body style="font-family: Arial, sans-serif; background:#f7f3ee; margin:0; padding:24px;">
<div style="max-width:600px; margin:0 auto; background:#ffffff; border-radius:8px; padding:32px;">
<h1 style="color:#8b4513; margin-top:0;">{{.Heading}}</h1>
{{template "body" .}}
<p style="color:#888; font-size:12px; margin-top:32px;">This is an automated message, please do not reply.</p>
</div>
</body>
</html>{{end}}`

const itemsTemplate = `{{define "items"}}{{if .}}
<table style="width:100%; border-collapse:collapse; margin:16px 0;">
<tr><th align="left">Item</th><th align="center">Qty</th><th align="right">Price</th><th align="right">Total</th></tr>
{{range .}}<tr><td>{{.Name}}</td><td align="center">{{.Quantity}}</td><td align="right">{{money .Price}}</td><td align="right">{{money (lineTotal .)}}</td></tr>
{{end}}</table>{{end}}{{end}}`

const confirmationTemplate = `{{define "body"}}{{with .Data}}
<p>Hi {{.CustomerName}},</p>
{{if eq .BookingType "reservation"}}<p>Your table reservation <strong>#{{.OrderID}}</strong> is confirmed.</p>
<p>Date: <strong>{{.ReservationDate}}</strong><br>Time: <strong>{{.ReservationTime}}</strong><br>Guests: <strong>{{.PartySize}}</strong>{{if .TableNumber}}<br>Table: <strong>{{.TableNumber}}</strong>{{end}}</p>
{{else}}<p>Your order <strong>#{{.OrderID}}</strong> is confirmed.</p>
{{if .OrderType}}<p>Order type: <strong>{{.OrderType}}</strong>{{if .PickupTime}}<br>Ready in: <strong>{{.PickupTime}}</strong>{{end}}</p>{{end}}
{{end}}{{template "items" .Items}}
{{if gt .AsapCharge 0.0}}<p>ASAP Charge: {{money .AsapCharge}}</p>{{end}}
<p><strong>Total Amount: {{money .TotalAmount}}</strong></p>
{{if eq .PaymentStatus "partial"}}<p>Deposit Paid: {{money .DepositAmount}}</p>
<p>Remaining Balance (due on arrival): {{money .RemainingAmount}}</p>
{{else if eq .PaymentStatus "paid"}}<p>Amount Paid: {{money .TotalAmount}}</p>
{{else}}<p>Amount Due: {{money .TotalAmount}}</p>
{{end}}<p>We look forward to serving you!</p>
{{end}}{{end}}`

const cancellationTemplate = `{{define "body"}}{{with .Data}}
<p>Hi {{.CustomerName}},</p>
<p>Your {{.BookingType}} <strong>#{{.OrderID}}</strong> has been cancelled.</p>
{{if .ReservationDate}}<p>Date: {{.ReservationDate}}{{if .ReservationTime}} at {{.ReservationTime}}{{end}}</p>{{end}}
{{if .Reason}}<p>Reason: {{.Reason}}</p>{{end}}
{{if gt .TotalAmount 0.0}}<p>Booking Amount: {{money .TotalAmount}}</p>{{end}}
{{if gt .RefundAmount 0.0}}<p>Refund Amount: {{money .RefundAmount}} will be returned to your original payment method within 5-7 business days.</p>{{end}}
<p>We hope to see you again soon.</p>
{{end}}{{end}}`

const paymentLinkTemplate = `{{define "body"}}{{with .Data}}
<p>Hi {{.CustomerName}},</p>
<p>Please complete the payment for order <strong>#{{.OrderID}}</strong>.</p>
{{template "items" .Items}}
<p><strong>Total Amount: {{money .TotalAmount}}</strong></p>
<p style="text-align:center; margin:24px 0;"><a href="{{.PaymentURL}}" style="background:#8b4513; color:#ffffff; padding:12px 24px; border-radius:4px; text-decoration:none;">Pay Now</a></p>
<p>If the button does not work, open this link: {{.PaymentURL}}</p>
{{end}}{{end}}`

const passwordResetTemplate = `{{define "body"}}{{with .Data}}
<p>We received a request to reset your password.</p>
<p style="text-align:center; margin:24px 0;"><a href="{{.Link}}" style="background:#8b4513; color:#ffffff; padding:12px 24px; border-radius:4px; text-decoration:none;">Reset Password</a></p>
<p>If you did not request this, you can ignore this email.</p>
{{end}}{{end}}`

type emailView struct {
	Subject string
	Heading string
	Data    interface{}
}

// EmailRenderer renders the literal HTML templates for outbound email.
type EmailRenderer struct {
	symbol       string
	confirmation *template.Template
	cancellation *template.Template
	paymentLink  *template.Template
	reset        *template.Template
}

func NewEmailRenderer(currencySymbol string) *EmailRenderer {
	r := &EmailRenderer{symbol: currencySymbol}
	funcs := template.FuncMap{
		"money": func(v float64) string { return utils.FormatMoney(r.symbol, v) },
		"lineTotal": func(item EmailItem) float64 {
			return item.Price * float64(item.Quantity)
		},
	}
	build := func(body string) *template.Template {
		t := template.Must(template.New("email").Funcs(funcs).Parse(layoutTemplate))
		template.Must(t.Parse(itemsTemplate))
		return template.Must(t.Parse(body))
	}
	r.confirmation = build(confirmationTemplate)
	r.cancellation = build(cancellationTemplate)
	r.paymentLink = build(paymentLinkTemplate)
	r.reset = build(passwordResetTemplate)
	return r
}

func (r *EmailRenderer) execute(t *template.Template, view emailView) (string, error) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", view); err != nil {
		return "", fmt.Errorf("render email: %w", err)
	}
	return buf.String(), nil
}

func (r *EmailRenderer) BookingConfirmation(p BookingConfirmationPayload) (subject, html string, err error) {
	heading := "Order Confirmed"
	subject = fmt.Sprintf("Order Confirmed - #%s", p.OrderID)
	if p.BookingType == BookingTypeReservation {
		heading = "Reservation Confirmed"
		subject = fmt.Sprintf("Reservation Confirmed - #%s", p.OrderID)
	}
	html, err = r.execute(r.confirmation, emailView{Subject: subject, Heading: heading, Data: p})
	return subject, html, err
}

func (r *EmailRenderer) Cancellation(p CancellationPayload) (subject, html string, err error) {
	subject = fmt.Sprintf("Booking Cancelled - #%s", p.OrderID)
	html, err = r.execute(r.cancellation, emailView{Subject: subject, Heading: "Booking Cancelled", Data: p})
	return subject, html, err
}

type paymentLinkView struct {
	PaymentLinkPayload
	PaymentURL string
}

func (r *EmailRenderer) PaymentLink(p PaymentLinkPayload, paymentURL string) (subject, html string, err error) {
	subject = fmt.Sprintf("Complete your payment - Order #%s", p.OrderID)
	view := paymentLinkView{PaymentLinkPayload: p, PaymentURL: paymentURL}
	html, err = r.execute(r.paymentLink, emailView{Subject: subject, Heading: "Payment Pending", Data: view})
	return subject, html, err
}

func (r *EmailRenderer) PasswordReset(link string) (subject, html string, err error) {
	subject = "Reset your password"
	data := struct{ Link string }{Link: link}
	html, err = r.execute(r.reset, emailView{Subject: subject, Heading: "Password Reset", Data: data})
	return subject, html, err
}

// ConfirmationFromOrder builds the confirmation payload for a stored order.
func ConfirmationFromOrder(order models.Order) BookingConfirmationPayload {
	p := BookingConfirmationPayload{
		BookingType:   BookingTypeOrder,
		OrderID:       FlexibleID(strconv.FormatUint(uint64(order.ID), 10)),
		CustomerName:  order.CustomerName,
		CustomerEmail: order.CustomerEmail,
		TotalAmount:   order.FinalTotal,
		AsapCharge:    order.AsapCharge,
		PaymentStatus: order.PaymentStatus,
		OrderType:     order.OrderType,
		PickupTime:    order.PickupTime,
	}
	for _, item := range order.Items {
		p.Items = append(p.Items, EmailItem{Name: item.Name, Quantity: item.Quantity, Price: item.Price})
	}
	return p
}

// ConfirmationFromReservation builds the confirmation payload for a stored reservation.
func ConfirmationFromReservation(r models.Reservation) BookingConfirmationPayload {
	p := BookingConfirmationPayload{
		BookingType:     BookingTypeReservation,
		OrderID:         FlexibleID(strconv.FormatUint(uint64(r.ID), 10)),
		CustomerName:    r.CustomerName,
		CustomerEmail:   r.CustomerEmail,
		TotalAmount:     r.TotalAmount,
		DepositAmount:   r.DepositAmount,
		RemainingAmount: r.RemainingAmount,
		PaymentStatus:   r.PaymentStatus,
		ReservationDate: r.ReservationDate,
		ReservationTime: r.ReservationTime,
		PartySize:       r.PartySize,
	}
	if r.Table != nil {
		p.TableNumber = r.Table.TableNumber
	}
	for _, item := range r.Items {
		p.Items = append(p.Items, EmailItem{Name: item.Name, Quantity: item.Quantity, Price: item.Price})
	}
	return p
}
