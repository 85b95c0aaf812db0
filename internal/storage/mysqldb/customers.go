package mysqldb

import (
	"context"
	"database/sql"
	"slices"
	"sort"
	"time"

	"gorm.io/gorm"

	"happylink/internal/errs"
	"happylink/internal/models"
)

// maxBalanceAgreements bounds how many agreements one chat can list
const maxBalanceAgreements = 10

// LinkChatByPhone attaches chatID to the single customer whose main phone
// contact ends with the submitted number. Any earlier link of the same chat
// is cleared in the same transaction, so a chat belongs to one customer.
func (d *DB) LinkChatByPhone(ctx context.Context, phone string, chatID int64) (bool, error) {
	suffix, ok := models.MatchablePhone(phone)
	if !ok {
		return false, nil
	}

	var clientID int64
	res := d.db.WithContext(ctx).Raw(`
		SELECT c.id
		FROM clients c
		JOIN client_contacts cp
			ON cp.agreement_id = c.id
			AND cp.main = 1
			AND cp.type = 'PHONE'
		WHERE cp.value LIKE ?
		ORDER BY c.id
		LIMIT 1`, "%"+suffix).Scan(&clientID)
	if res.Error != nil {
		return false, errs.Database("find client by phone", res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&client{}).
			Where("telegram_chat_id = ? AND id <> ?", chatID, clientID).
			Update("telegram_chat_id", nil).Error; err != nil {
			return err
		}
		return tx.Model(&client{}).
			Where("id = ?", clientID).
			Update("telegram_chat_id", chatID).Error
	})
	if err != nil {
		return false, errs.Database("link chat", err)
	}
	return true, nil
}

type customerRow struct {
	ID        int64
	Agreement string
	Name      string
	Phone     sql.NullString
}

// CustomerByChat returns the customer linked to chatID, or errs.ErrNotFound
func (d *DB) CustomerByChat(ctx context.Context, chatID int64) (*models.Customer, error) {
	var row customerRow
	res := d.db.WithContext(ctx).Raw(`
		SELECT c.id AS id, c.agreement AS agreement, c.name AS name, cp.value AS phone
		FROM clients c
		LEFT JOIN client_contacts cp
			ON cp.agreement_id = c.id
			AND cp.main = 1
			AND cp.type = 'PHONE'
		WHERE c.telegram_chat_id = ?
		ORDER BY c.id
		LIMIT 1`, chatID).Scan(&row)
	if res.Error != nil {
		return nil, errs.Database("customer by chat", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, errs.ErrNotFound
	}
	return &models.Customer{
		ID:        row.ID,
		Agreement: row.Agreement,
		Name:      row.Name,
		Phone:     row.Phone.String,
	}, nil
}

type balanceRow struct {
	Agreement string
	Balance   float64
	Plan      string
	City      string
	Street    string
	House     string
	Apartment string
}

// BalanceByChat returns every agreement linked to chatID with its active plans.
// Agreements without an active plan are not listed.
func (d *DB) BalanceByChat(ctx context.Context, chatID int64) ([]models.BalanceLine, error) {
	var rows []balanceRow
	err := d.db.WithContext(ctx).Raw(`
		SELECT c.agreement AS agreement,
		       c.balance AS balance,
		       bp.name AS plan,
		       ac.name AS city,
		       s.name AS street,
		       ah.name AS house,
		       c.apartment AS apartment
		FROM clients c
		JOIN addr_houses ah ON ah.id = c.house
		JOIN addr_streets s ON s.id = ah.street
		JOIN addr_cities ac ON ac.id = s.city
		JOIN client_prices cpr ON cpr.agreement = c.id AND cpr.time_stop IS NULL
		JOIN bill_prices bp ON bp.id = cpr.price
		WHERE c.telegram_chat_id = ?
		ORDER BY cpr.id DESC`, chatID).Scan(&rows).Error
	if err != nil {
		return nil, errs.Database("balance by chat", err)
	}

	var lines []models.BalanceLine
	index := make(map[string]int)
	for _, r := range rows {
		i, ok := index[r.Agreement]
		if !ok {
			if len(lines) == maxBalanceAgreements {
				continue
			}
			lines = append(lines, models.BalanceLine{
				Agreement: r.Agreement,
				Balance:   r.Balance,
				Address: models.Address{
					City:      r.City,
					Street:    r.Street,
					House:     r.House,
					Apartment: r.Apartment,
				},
			})
			i = len(lines) - 1
			index[r.Agreement] = i
		}
		if !slices.Contains(lines[i].Plans, r.Plan) {
			lines[i].Plans = append(lines[i].Plans, r.Plan)
		}
	}
	for i := range lines {
		sort.Strings(lines[i].Plans)
	}
	return lines, nil
}

type paymentRow struct {
	Agreement string
	Amount    float64
	Time      time.Time
	Comment   sql.NullString
	Channel   string
}

// PaymentsByChat returns the latest payments across the chat's agreements
func (d *DB) PaymentsByChat(ctx context.Context, chatID int64, limit int) ([]models.Payment, error) {
	var rows []paymentRow
	err := d.db.WithContext(ctx).Raw(`
		SELECT c.agreement AS agreement,
		       p.money AS amount,
		       p.time AS time,
		       p.comment AS comment,
		       p.payment_type AS channel
		FROM paymants p
		JOIN clients c ON p.agreement = c.id
		WHERE c.telegram_chat_id = ?
		ORDER BY p.time DESC
		LIMIT ?`, chatID, limit).Scan(&rows).Error
	if err != nil {
		return nil, errs.Database("payments by chat", err)
	}

	payments := make([]models.Payment, 0, len(rows))
	for _, r := range rows {
		payments = append(payments, models.Payment{
			Agreement: r.Agreement,
			Amount:    r.Amount,
			Time:      r.Time,
			Comment:   r.Comment.String,
			Channel:   r.Channel,
		})
	}
	return payments, nil
}
