package mysqldb

import "time"

// Row types mirror the billing tables touched by the tools. Queries mostly go
// through raw SQL; these types carry writes and the SQLite test schema.

type addrCity struct {
	ID   int64 `gorm:"primaryKey"`
	Name string
}

func (addrCity) TableName() string { return "addr_cities" }

type addrStreet struct {
	ID   int64 `gorm:"primaryKey"`
	City int64
	Name string
}

func (addrStreet) TableName() string { return "addr_streets" }

type addrHouse struct {
	ID     int64 `gorm:"primaryKey"`
	Street int64
	Name   string
}

func (addrHouse) TableName() string { return "addr_houses" }

type client struct {
	ID             int64 `gorm:"primaryKey"`
	Agreement      string
	Name           string
	Balance        float64
	House          int64
	Entrance       string
	Floor          string
	Apartment      string
	TelegramChatID *int64
}

func (client) TableName() string { return "clients" }

type clientContact struct {
	ID          int64 `gorm:"primaryKey"`
	AgreementID int64
	Type        string
	Value       string
	Main        int
}

func (clientContact) TableName() string { return "client_contacts" }

type billPrice struct {
	ID   int64 `gorm:"primaryKey"`
	Name string
}

func (billPrice) TableName() string { return "bill_prices" }

type clientPrice struct {
	ID        int64 `gorm:"primaryKey"`
	Agreement int64
	Price     int64
	TimeStart time.Time
	TimeStop  *time.Time
}

func (clientPrice) TableName() string { return "client_prices" }

type payment struct {
	ID          int64 `gorm:"primaryKey"`
	Agreement   int64
	Money       float64
	Time        time.Time
	Comment     *string
	PaymentType string
}

// the billing schema really spells it this way
func (payment) TableName() string { return "paymants" }

type employee struct {
	ID         int64 `gorm:"primaryKey"`
	Name       string
	TelegramID *int64
}

func (employee) TableName() string { return "employees" }

type questionReason struct {
	ID   int64 `gorm:"primaryKey"`
	Name string
}

func (questionReason) TableName() string { return "question_reasons" }

const (
	sentYes = "YES"
	sentNo  = "NO"
)

type question struct {
	ID                  int64 `gorm:"primaryKey"`
	Created             time.Time
	CreatedEmployee     *int64
	ResponsibleEmployee *int64
	Reason              int64
	Agreement           int64
	Phone               string
	Comment             string
	DestTime            time.Time
	IsSentTg            string `gorm:"default:NO"`
}

func (question) TableName() string { return "questions" }

type systemEvent struct {
	ID      int64 `gorm:"primaryKey"`
	Created time.Time
	Message string
}

func (systemEvent) TableName() string { return "system_events" }
