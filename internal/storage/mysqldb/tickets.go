package mysqldb

import (
	"context"
	"database/sql"
	"time"

	"happylink/internal/errs"
	"happylink/internal/models"
)

const latestTicketQuery = `
SELECT q.id AS id,
       q.created AS created,
       e.name AS created_employee,
       r.name AS reason,
       s.agreement AS agreement,
       c.name AS city,
       st.name AS street,
       h.name AS house,
       s.entrance AS entrance,
       s.floor AS floor,
       s.apartment AS apartment,
       q.phone AS phone,
       q.comment AS comment,
       q.dest_time AS dest_time,
       re.name AS responsible_employee,
       q.is_sent_tg AS is_sent_tg
FROM questions q
JOIN clients s ON q.agreement = s.id
JOIN addr_houses h ON h.id = s.house
JOIN addr_streets st ON st.id = h.street
JOIN addr_cities c ON c.id = st.city
LEFT JOIN question_reasons r ON r.id = q.reason
LEFT JOIN employees e ON e.id = q.created_employee
LEFT JOIN employees re ON re.id = q.responsible_employee
WHERE q.dest_time >= ? AND q.dest_time < ?
ORDER BY q.created DESC
LIMIT 1`

type ticketRow struct {
	ID                  int64
	Created             time.Time
	CreatedEmployee     sql.NullString
	Reason              sql.NullString
	Agreement           string
	City                string
	Street              string
	House               string
	Entrance            string
	Floor               string
	Apartment           string
	Phone               string
	Comment             string
	DestTime            time.Time
	ResponsibleEmployee sql.NullString
	IsSentTg            string
}

// LatestTicketDue returns the newest ticket whose target time is in [dayStart, dayEnd)
func (d *DB) LatestTicketDue(ctx context.Context, dayStart, dayEnd time.Time) (*models.Ticket, error) {
	var row ticketRow
	res := d.db.WithContext(ctx).Raw(latestTicketQuery, dayStart, dayEnd).Scan(&row)
	if res.Error != nil {
		return nil, errs.Database("latest ticket", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, errs.ErrNotFound
	}

	return &models.Ticket{
		ID:              row.ID,
		Created:         row.Created,
		CreatedEmployee: row.CreatedEmployee.String,
		Reason:          row.Reason.String,
		Agreement:       row.Agreement,
		Address: models.Address{
			City:      row.City,
			Street:    row.Street,
			House:     row.House,
			Entrance:  row.Entrance,
			Floor:     row.Floor,
			Apartment: row.Apartment,
		},
		Phone:               row.Phone,
		Comment:             row.Comment,
		DestTime:            row.DestTime,
		ResponsibleEmployee: row.ResponsibleEmployee.String,
		Sent:                row.IsSentTg == sentYes,
	}, nil
}

// ClaimTicket sets is_sent_tg only if it was unset, in a single statement
func (d *DB) ClaimTicket(ctx context.Context, id int64) (bool, error) {
	res := d.db.WithContext(ctx).Model(&question{}).
		Where("id = ? AND is_sent_tg = ?", id, sentNo).
		Update("is_sent_tg", sentYes)
	if res.Error != nil {
		return false, errs.Database("claim ticket", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// ReleaseTicket clears is_sent_tg so the next run retries delivery
func (d *DB) ReleaseTicket(ctx context.Context, id int64) error {
	res := d.db.WithContext(ctx).Model(&question{}).
		Where("id = ? AND is_sent_tg = ?", id, sentYes).
		Update("is_sent_tg", sentNo)
	if res.Error != nil {
		return errs.Database("release ticket", res.Error)
	}
	return nil
}
