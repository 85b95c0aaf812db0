package models

import (
	"fmt"
	"strings"
	"time"
)

// Customer is a billing client linked (or linkable) to a Telegram chat
type Customer struct {
	ID        int64
	Agreement string
	Name      string
	Phone     string
}

// PhoneSuffixLen is the national significant number length. Contacts are
// stored as 0XXXXXXXXX, 380XXXXXXXXX or +380XXXXXXXXX; the last nine digits
// are common to all of them.
const PhoneSuffixLen = 9

// PhoneSuffix returns the digits of phone used for contact matching
func PhoneSuffix(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) > PhoneSuffixLen {
		digits = digits[len(digits)-PhoneSuffixLen:]
	}
	return digits
}

// MatchablePhone returns the suffix of phone used to find a customer, or
// false when phone has fewer digits than a full national number
func MatchablePhone(phone string) (string, bool) {
	suffix := PhoneSuffix(phone)
	if len(suffix) < PhoneSuffixLen {
		return "", false
	}
	return suffix, true
}

// Address is the denormalized client address
type Address struct {
	City      string
	Street    string
	House     string
	Entrance  string
	Floor     string
	Apartment string
}

// Short renders "city, street, house, кв. apartment"
func (a Address) Short() string {
	return fmt.Sprintf("%s, %s, %s, кв. %s", a.City, a.Street, a.House, a.Apartment)
}

// Full renders the address with entrance and floor, as staff expect it
func (a Address) Full() string {
	return fmt.Sprintf("г.%s, %s, д.%s, под.%s, эт.%s, кв.%s",
		a.City, a.Street, a.House, a.Entrance, a.Floor, a.Apartment)
}

// BalanceLine is one agreement with its balance and active price plans
type BalanceLine struct {
	Agreement string
	Balance   float64
	Plans     []string
	Address   Address
}

// Payment represents a single payment made by a customer
type Payment struct {
	Agreement string
	Amount    float64
	Time      time.Time
	Comment   string
	Channel   string
}

// Ticket is a support request as shown to staff
type Ticket struct {
	ID                  int64
	Created             time.Time
	CreatedEmployee     string
	Reason              string
	Agreement           string
	Address             Address
	Phone               string
	Comment             string
	DestTime            time.Time
	ResponsibleEmployee string // empty when nobody is assigned
	Sent                bool
}

// Stage is the position of a chat in the support conversation
type Stage string

const (
	StageAnonymous           Stage = "anonymous"
	StageIdentified          Stage = "identified"
	StageAwaitingSupportText Stage = "awaiting_support_text"
)
