package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yeremiapane/restaurant-site/models"
	"github.com/yeremiapane/restaurant-site/utils"
)

// AsapPickupTime is the pickup slot that carries the priority surcharge.
const AsapPickupTime = "ASAP (15-20 mins)"

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

var PickupTimeSlots = []string{
	AsapPickupTime,
	"30 minutes",
	"45 minutes",
	"1 hour",
	"1.5 hours",
	"2 hours",
}

type OrderTypeOption struct {
	Value       string `json:"value"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

var OrderTypes = []OrderTypeOption{
	{Value: models.OrderTypePickup, Label: "Pickup", Description: "Collect your order at the counter"},
	{Value: models.OrderTypeTakeout, Label: "Takeout", Description: "Packed to go"},
	{Value: models.OrderTypeDineIn, Label: "Dine-in", Description: "Served at your table"},
	{Value: models.OrderTypeDelivery, Label: "Delivery", Description: "Delivered to your address"},
}

var (
	ErrEmptyCart             = errors.New("cart is empty")
	ErrNameRequired          = errors.New("name is required")
	ErrPhoneRequired         = errors.New("phone is required")
	ErrInvalidOrderType      = errors.New("invalid order type")
	ErrAddressRequired       = errors.New("delivery address is required")
	ErrReservationIncomplete = errors.New("date, time, party size and table are required")
	ErrInvalidPaymentOption  = errors.New("payment option must be deposit or full")
	ErrInvalidDate           = errors.New("invalid reservation date")
	ErrInvalidTime           = errors.New("invalid reservation time")
	ErrDateInPast            = errors.New("reservation date is in the past")
)

// BookingLine is a priced line of an order or a reservation pre-order.
type BookingLine struct {
	MenuItemID uint    `json:"menu_item_id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Quantity   int     `json:"quantity"`
}

func linesTotal(lines []BookingLine) float64 {
	var total float64
	for _, l := range lines {
		total += l.Price * float64(l.Quantity)
	}
	return utils.Round2(total)
}

// Pricing holds the surcharge and deposit rules applied by the booking forms.
type Pricing struct {
	AsapCharge  float64
	DepositRate float64
	Now         func() time.Time
}

func NewPricing(asapCharge, depositRate float64) Pricing {
	return Pricing{AsapCharge: asapCharge, DepositRate: depositRate, Now: time.Now}
}

type OrderForm struct {
	CustomerName        string `json:"customer_name"`
	CustomerPhone       string `json:"customer_phone"`
	CustomerEmail       string `json:"customer_email"`
	OrderType           string `json:"order_type"`
	PickupTime          string `json:"pickup_time"`
	DeliveryAddress     string `json:"delivery_address"`
	SpecialInstructions string `json:"special_instructions"`
}

func validOrderType(t string) bool {
	for _, opt := range OrderTypes {
		if opt.Value == t {
			return true
		}
	}
	return false
}

// AsapSurcharge returns the surcharge and priority flag for a pickup slot.
func (p Pricing) AsapSurcharge(pickupTime string) (float64, bool) {
	if pickupTime == AsapPickupTime {
		return p.AsapCharge, true
	}
	return 0, false
}

// BuildOrder validates the form and produces the order creation payload.
func (p Pricing) BuildOrder(form OrderForm, lines []BookingLine) (*models.Order, error) {
	name := strings.TrimSpace(form.CustomerName)
	phone := strings.TrimSpace(form.CustomerPhone)
	if name == "" {
		return nil, ErrNameRequired
	}
	if phone == "" {
		return nil, ErrPhoneRequired
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	orderType := form.OrderType
	if orderType == "" {
		orderType = models.OrderTypePickup
	}
	if !validOrderType(orderType) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOrderType, orderType)
	}
	address := strings.TrimSpace(form.DeliveryAddress)
	if orderType == models.OrderTypeDelivery && address == "" {
		return nil, ErrAddressRequired
	}

	pickupTime := form.PickupTime
	if pickupTime == "" {
		pickupTime = PickupTimeSlots[1]
	}
	charge, priority := p.AsapSurcharge(pickupTime)
	total := linesTotal(lines)

	order := &models.Order{
		CustomerName:        name,
		CustomerPhone:       phone,
		CustomerEmail:       strings.TrimSpace(form.CustomerEmail),
		OrderType:           orderType,
		PickupTime:          pickupTime,
		DeliveryAddress:     address,
		SpecialInstructions: strings.TrimSpace(form.SpecialInstructions),
		TotalAmount:         total,
		AsapCharge:          charge,
		FinalTotal:          utils.Round2(total + charge),
		IsPriority:          priority,
		Status:              models.OrderStatusPending,
		PaymentStatus:       models.PaymentStatusPending,
	}
	for _, l := range lines {
		order.Items = append(order.Items, models.OrderItem{
			MenuItemID: l.MenuItemID,
			Name:       l.Name,
			Price:      l.Price,
			Quantity:   l.Quantity,
		})
	}
	return order, nil
}

type ReservationForm struct {
	CustomerName    string `json:"customer_name"`
	CustomerEmail   string `json:"customer_email"`
	CustomerPhone   string `json:"customer_phone"`
	Date            string `json:"reservation_date"`
	Time            string `json:"reservation_time"`
	PartySize       int    `json:"party_size"`
	TableID         uint   `json:"table_id"`
	PaymentOption   string `json:"payment_option"`
	SpecialRequests string `json:"special_requests"`
}

// CanSubmit reports whether the form has every field the submit button needs.
func (f ReservationForm) CanSubmit() bool {
	return strings.TrimSpace(f.Date) != "" &&
		strings.TrimSpace(f.Time) != "" &&
		f.PartySize > 0 &&
		f.TableID != 0
}

// SplitPayment computes what is charged now and what is due on arrival.
func (p Pricing) SplitPayment(total float64, option string) (deposit, remaining float64, status string, err error) {
	total = utils.Round2(total)
	switch option {
	case models.PaymentOptionDeposit:
		deposit = utils.Round2(total * p.DepositRate)
		return deposit, utils.Round2(total - deposit), models.PaymentStatusPartial, nil
	case models.PaymentOptionFull:
		return total, 0, models.PaymentStatusPending, nil
	default:
		return 0, 0, "", ErrInvalidPaymentOption
	}
}

// BuildReservation validates the form and produces the reservation creation payload.
func (p Pricing) BuildReservation(form ReservationForm, lines []BookingLine) (*models.Reservation, error) {
	if !form.CanSubmit() {
		return nil, ErrReservationIncomplete
	}
	name := strings.TrimSpace(form.CustomerName)
	if name == "" {
		return nil, ErrNameRequired
	}

	day, err := time.Parse(DateLayout, form.Date)
	if err != nil {
		return nil, ErrInvalidDate
	}
	if _, err := time.Parse(TimeLayout, form.Time); err != nil {
		return nil, ErrInvalidTime
	}
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	today, _ := time.Parse(DateLayout, now().Format(DateLayout))
	if day.Before(today) {
		return nil, ErrDateInPast
	}

	option := form.PaymentOption
	if option == "" {
		option = models.PaymentOptionDeposit
	}
	total := linesTotal(lines)
	deposit, remaining, paymentStatus, err := p.SplitPayment(total, option)
	if err != nil {
		return nil, err
	}

	reservation := &models.Reservation{
		TableID:         form.TableID,
		CustomerName:    name,
		CustomerEmail:   strings.TrimSpace(form.CustomerEmail),
		CustomerPhone:   strings.TrimSpace(form.CustomerPhone),
		ReservationDate: form.Date,
		ReservationTime: form.Time,
		PartySize:       form.PartySize,
		SpecialRequests: strings.TrimSpace(form.SpecialRequests),
		TotalAmount:     total,
		PaymentOption:   option,
		DepositAmount:   deposit,
		RemainingAmount: remaining,
		PaymentStatus:   paymentStatus,
		Status:          models.ReservationStatusPending,
	}
	for _, l := range lines {
		reservation.Items = append(reservation.Items, models.ReservationItem{
			MenuItemID: l.MenuItemID,
			Name:       l.Name,
			Price:      l.Price,
			Quantity:   l.Quantity,
		})
	}
	return reservation, nil
}

var orderTransitions = map[string][]string{
	models.OrderStatusPending:   {models.OrderStatusConfirmed, models.OrderStatusCancelled},
	models.OrderStatusConfirmed: {models.OrderStatusPreparing, models.OrderStatusCancelled},
	models.OrderStatusPreparing: {models.OrderStatusReady, models.OrderStatusCancelled},
	models.OrderStatusReady:     {models.OrderStatusDelivered, models.OrderStatusCancelled},
}

var reservationTransitions = map[string][]string{
	models.ReservationStatusPending:   {models.ReservationStatusConfirmed, models.ReservationStatusCancelled},
	models.ReservationStatusConfirmed: {models.ReservationStatusCompleted, models.ReservationStatusCancelled},
}

var ErrInvalidTransition = errors.New("invalid status transition")

func checkTransition(table map[string][]string, from, to string) error {
	for _, next := range table[from] {
		if next == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

func CheckOrderTransition(from, to string) error {
	return checkTransition(orderTransitions, from, to)
}

func CheckReservationTransition(from, to string) error {
	return checkTransition(reservationTransitions, from, to)
}
