package mysqldb

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"happylink/internal/errs"
)

var allTables = []interface{}{
	&addrCity{}, &addrStreet{}, &addrHouse{},
	&client{}, &clientContact{},
	&billPrice{}, &clientPrice{}, &payment{},
	&employee{}, &questionReason{}, &question{},
	&systemEvent{},
}

// setupSQLite creates a file-backed SQLite database with the billing tables
func setupSQLite(t *testing.T) (*DB, *gorm.DB) {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "billing.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(allTables...))

	db := New(gdb)
	t.Cleanup(func() { db.Close() })
	return db, gdb
}

func ptr[T any](v T) *T { return &v }

// seedBilling inserts two clients in one house with contacts, plans and payments
func seedBilling(t *testing.T, gdb *gorm.DB) {
	t.Helper()

	rows := []interface{}{
		&addrCity{ID: 1, Name: "Київ"},
		&addrStreet{ID: 1, City: 1, Name: "вул. Шевченка"},
		&addrHouse{ID: 1, Street: 1, Name: "10"},
		&client{ID: 1, Agreement: "1001", Name: "Іван", Balance: 150.5, House: 1, Entrance: "2", Floor: "3", Apartment: "12"},
		&client{ID: 2, Agreement: "1002", Name: "Петро", Balance: -20, House: 1, Apartment: "7"},
		&clientContact{ID: 1, AgreementID: 1, Type: "PHONE", Value: "+380501234567", Main: 1},
		&clientContact{ID: 2, AgreementID: 2, Type: "PHONE", Value: "0671112233", Main: 1},
		&clientContact{ID: 3, AgreementID: 2, Type: "PHONE", Value: "0930000000", Main: 0},
		&billPrice{ID: 1, Name: "Оптика 100"},
		&billPrice{ID: 2, Name: "IPTV"},
		&clientPrice{ID: 1, Agreement: 1, Price: 1, TimeStart: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		&clientPrice{ID: 2, Agreement: 1, Price: 2, TimeStart: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)},
		&clientPrice{ID: 3, Agreement: 1, Price: 2, TimeStart: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), TimeStop: ptr(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))},
		&clientPrice{ID: 4, Agreement: 2, Price: 1, TimeStart: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), TimeStop: ptr(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))},
		&payment{ID: 1, Agreement: 1, Money: 200, Time: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC), Comment: ptr("EasyPay"), PaymentType: "online"},
		&payment{ID: 2, Agreement: 1, Money: 250, Time: time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC), PaymentType: "cash"},
		&payment{ID: 3, Agreement: 1, Money: 300, Time: time.Date(2026, 10, 1, 10, 0, 0, 0, time.UTC), Comment: ptr("Privat24"), PaymentType: "online"},
		&payment{ID: 4, Agreement: 2, Money: 999, Time: time.Date(2026, 10, 2, 10, 0, 0, 0, time.UTC), PaymentType: "cash"},
		&employee{ID: 1, Name: "Оператор"},
		&employee{ID: 2, Name: "Монтажник"},
		&questionReason{ID: 3, Name: "Ремонт"},
	}
	for _, r := range rows {
		require.NoError(t, gdb.Create(r).Error)
	}
}

func TestLinkChatByPhone(t *testing.T) {
	db, gdb := setupSQLite(t)
	seedBilling(t, gdb)
	ctx := context.Background()

	linked, err := db.LinkChatByPhone(ctx, "380501234567", 555)
	require.NoError(t, err)
	assert.True(t, linked)

	var clients []client
	require.NoError(t, gdb.Order("id").Find(&clients).Error)
	require.Len(t, clients, 2)
	require.NotNil(t, clients[0].TelegramChatID)
	assert.Equal(t, int64(555), *clients[0].TelegramChatID)
	assert.Nil(t, clients[1].TelegramChatID, "only the matching customer is linked")
}

func TestLinkChatByPhone_MovesChatToNewCustomer(t *testing.T) {
	db, gdb := setupSQLite(t)
	seedBilling(t, gdb)
	ctx := context.Background()

	linked, err := db.LinkChatByPhone(ctx, "380501234567", 555)
	require.NoError(t, err)
	require.True(t, linked)

	linked, err = db.LinkChatByPhone(ctx, "380671112233", 555)
	require.NoError(t, err)
	require.True(t, linked)

	var ids []int64
	require.NoError(t, gdb.Model(&client{}).Where("telegram_chat_id = ?", 555).Order("id").Pluck("id", &ids).Error)
	assert.Equal(t, []int64{2}, ids, "a chat belongs to one customer")

	customer, err := db.CustomerByChat(ctx, 555)
	require.NoError(t, err)
	assert.Equal(t, "1002", customer.Agreement)

	// Relinking the same customer keeps the link
	linked, err = db.LinkChatByPhone(ctx, "0671112233", 555)
	require.NoError(t, err)
	assert.True(t, linked)
	customer, err = db.CustomerByChat(ctx, 555)
	require.NoError(t, err)
	assert.Equal(t, int64(2), customer.ID)
}

func TestLinkChatByPhone_NoMatch(t *testing.T) {
	db, gdb := setupSQLite(t)
	seedBilling(t, gdb)
	ctx := context.Background()

	tests := []string{
		"+380999999999",
		"0930000000", // only a secondary contact carries this number
		"",
		"7",
		"1234567",
	}
	for _, phone := range tests {
		linked, err := db.LinkChatByPhone(ctx, phone, 777)
		require.NoError(t, err)
		assert.False(t, linked, phone)
	}

	var count int64
	require.NoError(t, gdb.Model(&client{}).Where("telegram_chat_id IS NOT NULL").Count(&count).Error)
	assert.Zero(t, count)
}

func TestCustomerByChat(t *testing.T) {
	db, gdb := setupSQLite(t)
	seedBilling(t, gdb)
	ctx := context.Background()

	_, err := db.CustomerByChat(ctx, 555)
	assert.ErrorIs(t, err, errs.ErrNotFound)

	_, err = db.LinkChatByPhone(ctx, "0671112233", 555)
	require.NoError(t, err)

	customer, err := db.CustomerByChat(ctx, 555)
	require.NoError(t, err)
	assert.Equal(t, int64(2), customer.ID)
	assert.Equal(t, "1002", customer.Agreement)
	assert.Equal(t, "Петро", customer.Name)
	assert.Equal(t, "0671112233", customer.Phone)
}

func TestBalanceByChat(t *testing.T) {
	db, gdb := setupSQLite(t)
	seedBilling(t, gdb)
	ctx := context.Background()

	_, err := db.LinkChatByPhone(ctx, "+380501234567", 555)
	require.NoError(t, err)

	lines, err := db.BalanceByChat(ctx, 555)
	require.NoError(t, err)
	require.Len(t, lines, 1)

	line := lines[0]
	assert.Equal(t, "1001", line.Agreement)
	assert.InDelta(t, 150.5, line.Balance, 0.001)
	assert.Equal(t, []string{"IPTV", "Оптика 100"}, line.Plans)
	assert.Equal(t, "Київ, вул. Шевченка, 10, кв. 12", line.Address.Short())
}

func TestBalanceByChat_NoActivePlans(t *testing.T) {
	db, gdb := setupSQLite(t)
	seedBilling(t, gdb)
	ctx := context.Background()

	_, err := db.LinkChatByPhone(ctx, "0671112233", 555)
	require.NoError(t, err)

	lines, err := db.BalanceByChat(ctx, 555)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestPaymentsByChat(t *testing.T) {
	db, gdb := setupSQLite(t)
	seedBilling(t, gdb)
	ctx := context.Background()

	_, err := db.LinkChatByPhone(ctx, "+380501234567", 555)
	require.NoError(t, err)

	payments, err := db.PaymentsByChat(ctx, 555, 2)
	require.NoError(t, err)
	require.Len(t, payments, 2)

	assert.InDelta(t, 300, payments[0].Amount, 0.001)
	assert.Equal(t, "Privat24", payments[0].Comment)
	assert.Equal(t, "1001", payments[0].Agreement)
	assert.True(t, payments[0].Time.After(payments[1].Time))
	assert.Equal(t, "", payments[1].Comment)
}

func seedTickets(t *testing.T, gdb *gorm.DB, day time.Time) {
	t.Helper()

	rows := []*question{
		{ID: 1, Created: day.Add(8 * time.Hour), CreatedEmployee: ptr(int64(1)), Reason: 3, Agreement: 1, Phone: "+38 (050) 123-45-67", Comment: "Нет линка", DestTime: day.Add(12 * time.Hour)},
		{ID: 2, Created: day.Add(9 * time.Hour), CreatedEmployee: ptr(int64(1)), ResponsibleEmployee: ptr(int64(2)), Reason: 3, Agreement: 2, Phone: "0671112233", Comment: "Обрыв", DestTime: day.Add(15 * time.Hour)},
		{ID: 3, Created: day.Add(10 * time.Hour), CreatedEmployee: ptr(int64(1)), Reason: 3, Agreement: 1, Phone: "0501234567", Comment: "Завтра", DestTime: day.Add(36 * time.Hour)},
	}
	for _, r := range rows {
		require.NoError(t, gdb.Create(r).Error)
	}
}

func TestLatestTicketDue(t *testing.T) {
	db, gdb := setupSQLite(t)
	seedBilling(t, gdb)
	day := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	seedTickets(t, gdb, day)
	ctx := context.Background()

	ticket, err := db.LatestTicketDue(ctx, day, day.AddDate(0, 0, 1))
	require.NoError(t, err)

	assert.Equal(t, int64(2), ticket.ID, "the newest ticket due today wins; tomorrow's is ignored")
	assert.Equal(t, "Ремонт", ticket.Reason)
	assert.Equal(t, "Оператор", ticket.CreatedEmployee)
	assert.Equal(t, "Монтажник", ticket.ResponsibleEmployee)
	assert.Equal(t, "1002", ticket.Agreement)
	assert.Equal(t, "Київ", ticket.Address.City)
	assert.False(t, ticket.Sent)
	assert.True(t, ticket.DestTime.Equal(day.Add(15*time.Hour)))

	_, err = db.LatestTicketDue(ctx, day.AddDate(0, 0, 5), day.AddDate(0, 0, 6))
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestClaimAndReleaseTicket(t *testing.T) {
	db, gdb := setupSQLite(t)
	seedBilling(t, gdb)
	day := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	seedTickets(t, gdb, day)
	ctx := context.Background()

	claimed, err := db.ClaimTicket(ctx, 2)
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = db.ClaimTicket(ctx, 2)
	require.NoError(t, err)
	assert.False(t, claimed, "second claim must observe the flag")

	ticket, err := db.LatestTicketDue(ctx, day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.True(t, ticket.Sent)

	require.NoError(t, db.ReleaseTicket(ctx, 2))
	claimed, err = db.ClaimTicket(ctx, 2)
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = db.ClaimTicket(ctx, 42)
	require.NoError(t, err)
	assert.False(t, claimed)
}

func TestTruncateTable_RejectsInvalidName(t *testing.T) {
	db, _ := setupSQLite(t)

	err := db.TruncateTable(context.Background(), "system_events; DROP TABLE clients")
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindDatabase))
}

func TestPingAndClose(t *testing.T) {
	db, _ := setupSQLite(t)
	ctx := context.Background()

	require.NoError(t, db.Ping(ctx))
	require.NoError(t, db.Close())

	err := db.Ping(ctx)
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindDatabase))
}
