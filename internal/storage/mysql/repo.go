package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	mysqldrv "github.com/go-sql-driver/mysql"

	"staybook/internal/domain"
)

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

const mysqlErrDupEntry = 1062

func isDupKey(err error) bool {
	var me *mysqldrv.MySQLError
	return errors.As(err, &me) && me.Number == mysqlErrDupEntry
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func nullStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func ptrTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

func ptrStr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// ---- hotels ----

func (r *Repo) Create(ctx context.Context, h *domain.Hotel) error {
	res, err := r.conn(ctx).ExecContext(ctx, insertHotelSQL,
		h.Name, h.Address, h.City, h.Country, h.Rating)
	if err != nil {
		return err
	}
	h.ID, err = res.LastInsertId()
	return err
}

func (r *Repo) Get(ctx context.Context, id int64) (domain.Hotel, error) {
	var (
		h         domain.Hotel
		deletedAt sql.NullTime
	)
	err := r.conn(ctx).QueryRowContext(ctx, getHotelSQL, id).Scan(
		&h.ID, &h.Name, &h.Address, &h.City, &h.Country, &h.Rating,
		&h.CreatedAt, &h.UpdatedAt, &deletedAt)
	if err == sql.ErrNoRows {
		return domain.Hotel{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Hotel{}, err
	}
	h.DeletedAt = ptrTime(deletedAt)
	return h, nil
}

func (r *Repo) List(ctx context.Context, q domain.HotelsQuery) (domain.HotelsPage, error) {
	where := []string{"deleted_at IS NULL"}
	args := []any{}
	if q.City != nil {
		where = append(where, "city = ?")
		args = append(args, *q.City)
	}
	if q.Country != nil {
		where = append(where, "country = ?")
		args = append(args, *q.Country)
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.conn(ctx).QueryRowContext(ctx,
		"SELECT COUNT(*) FROM hotels WHERE "+cond, args...).Scan(&total); err != nil {
		return domain.HotelsPage{}, err
	}

	rows, err := r.conn(ctx).QueryContext(ctx, fmt.Sprintf(`
SELECT id, name, address, city, country, rating, created_at, updated_at, deleted_at
FROM hotels
WHERE %s
ORDER BY name, id
LIMIT ? OFFSET ?`, cond), append(args, q.Limit, q.Offset)...)
	if err != nil {
		return domain.HotelsPage{}, err
	}
	defer rows.Close()

	var out []domain.Hotel
	for rows.Next() {
		var (
			h         domain.Hotel
			deletedAt sql.NullTime
		)
		if err := rows.Scan(&h.ID, &h.Name, &h.Address, &h.City, &h.Country,
			&h.Rating, &h.CreatedAt, &h.UpdatedAt, &deletedAt); err != nil {
			return domain.HotelsPage{}, err
		}
		h.DeletedAt = ptrTime(deletedAt)
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return domain.HotelsPage{}, err
	}
	return domain.HotelsPage{Items: out, Total: total}, nil
}

func (r *Repo) Update(ctx context.Context, h domain.Hotel) error {
	res, err := r.conn(ctx).ExecContext(ctx, updateHotelSQL,
		h.Name, h.Address, h.City, h.Country, h.Rating, h.ID)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

func (r *Repo) ExistsByNameCity(ctx context.Context, name, city string) (bool, error) {
	var ok bool
	err := r.conn(ctx).QueryRowContext(ctx, existsHotelByNameCitySQL, name, city).Scan(&ok)
	return ok, err
}

func (r *Repo) SoftDelete(ctx context.Context, id int64) error {
	return r.WithTx(ctx, func(ctx context.Context) error {
		c := r.conn(ctx)
		if _, err := c.ExecContext(ctx, softDeleteHotelBookingsSQL, id); err != nil {
			return err
		}
		if _, err := c.ExecContext(ctx, softDeleteHotelRoomsSQL, id); err != nil {
			return err
		}
		res, err := c.ExecContext(ctx, softDeleteHotelSQL, id)
		if err != nil {
			return err
		}
		return affectedOrNotFound(res)
	})
}

func (r *Repo) HardDelete(ctx context.Context, id int64) error {
	return r.WithTx(ctx, func(ctx context.Context) error {
		c := r.conn(ctx)
		if _, err := c.ExecContext(ctx, hardDeleteHotelBookingsSQL, id); err != nil {
			return err
		}
		if _, err := c.ExecContext(ctx, hardDeleteHotelReviewsSQL, id); err != nil {
			return err
		}
		if _, err := c.ExecContext(ctx, hardDeleteHotelRoomsSQL, id); err != nil {
			return err
		}
		res, err := c.ExecContext(ctx, hardDeleteHotelSQL, id)
		if err != nil {
			return err
		}
		return affectedOrNotFound(res)
	})
}

// ---- rooms ----

func (r *Repo) CreateRoom(ctx context.Context, rm *domain.Room) error {
	res, err := r.conn(ctx).ExecContext(ctx, insertRoomSQL,
		rm.HotelID, rm.RoomNumber, int(rm.Type), rm.PricePerNight, rm.Capacity)
	if err != nil {
		if isDupKey(err) {
			return domain.ErrDuplicateRoomNumber
		}
		return err
	}
	rm.ID, err = res.LastInsertId()
	return err
}

func (r *Repo) scanRoom(row interface{ Scan(...any) error }) (domain.Room, error) {
	var (
		rm        domain.Room
		roomType  int
		deletedAt sql.NullTime
	)
	err := row.Scan(&rm.ID, &rm.HotelID, &rm.RoomNumber, &roomType,
		&rm.PricePerNight, &rm.Capacity, &rm.CreatedAt, &rm.UpdatedAt, &deletedAt)
	if err != nil {
		return domain.Room{}, err
	}
	rm.Type = domain.RoomType(roomType)
	rm.DeletedAt = ptrTime(deletedAt)
	return rm, nil
}

func (r *Repo) GetRoom(ctx context.Context, id int64) (domain.Room, error) {
	rm, err := r.scanRoom(r.conn(ctx).QueryRowContext(ctx, getRoomSQL, id))
	if err == sql.ErrNoRows {
		return domain.Room{}, domain.ErrNotFound
	}
	return rm, err
}

func (r *Repo) GetRoomForUpdate(ctx context.Context, id int64) (domain.Room, error) {
	rm, err := r.scanRoom(r.conn(ctx).QueryRowContext(ctx, getRoomForUpdateSQL, id))
	if err == sql.ErrNoRows {
		return domain.Room{}, domain.ErrNotFound
	}
	return rm, err
}

func (r *Repo) ListRoomsByHotel(ctx context.Context, hotelID int64, pg domain.PageQuery) ([]domain.Room, error) {
	rows, err := r.conn(ctx).QueryContext(ctx, listRoomsByHotelSQL, hotelID, pg.Limit, pg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Room
	for rows.Next() {
		rm, err := r.scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rm)
	}
	return out, rows.Err()
}

func (r *Repo) UpdateRoom(ctx context.Context, rm domain.Room) error {
	res, err := r.conn(ctx).ExecContext(ctx, updateRoomSQL,
		rm.RoomNumber, int(rm.Type), rm.PricePerNight, rm.Capacity, rm.ID)
	if err != nil {
		if isDupKey(err) {
			return domain.ErrDuplicateRoomNumber
		}
		return err
	}
	return affectedOrNotFound(res)
}

func (r *Repo) SoftDeleteRoomWithBookings(ctx context.Context, id int64) error {
	return r.WithTx(ctx, func(ctx context.Context) error {
		c := r.conn(ctx)
		if _, err := c.ExecContext(ctx, softDeleteRoomBookingsSQL, id); err != nil {
			return err
		}
		res, err := c.ExecContext(ctx, softDeleteRoomSQL, id)
		if err != nil {
			return err
		}
		return affectedOrNotFound(res)
	})
}

// ---- bookings ----

func (r *Repo) CreateBooking(ctx context.Context, b *domain.Booking) error {
	res, err := r.conn(ctx).ExecContext(ctx, insertBookingSQL,
		b.UserID, b.RoomID, b.CheckIn, b.CheckOut, b.TotalPrice,
		int(b.Status), nullStr(b.CancellationReason))
	if err != nil {
		return err
	}
	b.ID, err = res.LastInsertId()
	return err
}

func (r *Repo) scanBooking(row interface{ Scan(...any) error }) (domain.Booking, error) {
	var (
		b         domain.Booking
		status    int
		reason    sql.NullString
		deletedAt sql.NullTime
	)
	err := row.Scan(&b.ID, &b.UserID, &b.RoomID, &b.CheckIn, &b.CheckOut,
		&b.TotalPrice, &status, &reason, &b.CreatedAt, &b.UpdatedAt, &deletedAt)
	if err != nil {
		return domain.Booking{}, err
	}
	b.Status = domain.BookingStatus(status)
	b.CancellationReason = ptrStr(reason)
	b.DeletedAt = ptrTime(deletedAt)
	return b, nil
}

func (r *Repo) GetBooking(ctx context.Context, id int64) (domain.Booking, error) {
	b, err := r.scanBooking(r.conn(ctx).QueryRowContext(ctx, getBookingSQL, id))
	if err == sql.ErrNoRows {
		return domain.Booking{}, domain.ErrNotFound
	}
	return b, err
}

func (r *Repo) UpdateBooking(ctx context.Context, b domain.Booking) error {
	res, err := r.conn(ctx).ExecContext(ctx, updateBookingSQL,
		b.CheckIn, b.CheckOut, b.TotalPrice, int(b.Status),
		nullStr(b.CancellationReason), b.ID)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

func (r *Repo) listBookings(ctx context.Context, query string, args ...any) ([]domain.Booking, error) {
	rows, err := r.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Booking
	for rows.Next() {
		b, err := r.scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *Repo) ListBookingsByUser(ctx context.Context, userID int64, pg domain.PageQuery) ([]domain.Booking, error) {
	return r.listBookings(ctx, listBookingsByUserSQL, userID, pg.Limit, pg.Offset)
}

func (r *Repo) ListBookingsByRoom(ctx context.Context, roomID int64, pg domain.PageQuery) ([]domain.Booking, error) {
	return r.listBookings(ctx, listBookingsByRoomSQL, roomID, pg.Limit, pg.Offset)
}

func (r *Repo) ListOverlapping(ctx context.Context, roomID int64, checkIn, checkOut time.Time, excludeID int64) ([]domain.Booking, error) {
	return r.listBookings(ctx, listOverlappingSQL,
		roomID, int(domain.BookingCancelled), checkOut, checkIn, excludeID)
}

func (r *Repo) ActiveBookingIDs(ctx context.Context, roomID int64, now time.Time) ([]int64, error) {
	rows, err := r.conn(ctx).QueryContext(ctx, activeBookingIDsSQL,
		roomID, int(domain.BookingCancelled), now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *Repo) HasCompletedStay(ctx context.Context, userID, hotelID int64) (bool, error) {
	var ok bool
	err := r.conn(ctx).QueryRowContext(ctx, hasCompletedStaySQL,
		userID, hotelID, int(domain.BookingCompleted)).Scan(&ok)
	return ok, err
}

// ---- payments ----

func (r *Repo) CreatePayment(ctx context.Context, p *domain.Payment) error {
	res, err := r.conn(ctx).ExecContext(ctx, insertPaymentSQL,
		p.BookingID, p.Amount, p.Currency, int(p.Status), p.Method,
		p.TransactionID, nullTime(p.PaidAt))
	if err != nil {
		if isDupKey(err) {
			return domain.ErrDuplicatePayment
		}
		return err
	}
	p.ID, err = res.LastInsertId()
	return err
}

func (r *Repo) scanPayment(row interface{ Scan(...any) error }) (domain.Payment, error) {
	var (
		p      domain.Payment
		status int
		paidAt sql.NullTime
	)
	err := row.Scan(&p.ID, &p.BookingID, &p.Amount, &p.Currency, &status,
		&p.Method, &p.TransactionID, &paidAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return domain.Payment{}, err
	}
	p.Status = domain.PaymentStatus(status)
	p.PaidAt = ptrTime(paidAt)
	return p, nil
}

func (r *Repo) GetPayment(ctx context.Context, id int64) (domain.Payment, error) {
	p, err := r.scanPayment(r.conn(ctx).QueryRowContext(ctx, getPaymentSQL, id))
	if err == sql.ErrNoRows {
		return domain.Payment{}, domain.ErrNotFound
	}
	return p, err
}

func (r *Repo) GetPaymentByBooking(ctx context.Context, bookingID int64) (domain.Payment, error) {
	p, err := r.scanPayment(r.conn(ctx).QueryRowContext(ctx, getPaymentByBookingSQL, bookingID))
	if err == sql.ErrNoRows {
		return domain.Payment{}, domain.ErrNotFound
	}
	return p, err
}

func (r *Repo) UpdatePayment(ctx context.Context, p domain.Payment) error {
	res, err := r.conn(ctx).ExecContext(ctx, updatePaymentSQL,
		int(p.Status), p.TransactionID, nullTime(p.PaidAt), p.ID)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

// ---- reviews ----

func (r *Repo) CreateReview(ctx context.Context, rv *domain.Review) error {
	res, err := r.conn(ctx).ExecContext(ctx, insertReviewSQL,
		rv.UserID, rv.HotelID, rv.Rating, rv.Comment)
	if err != nil {
		return err
	}
	rv.ID, err = res.LastInsertId()
	return err
}

func (r *Repo) scanReview(row interface{ Scan(...any) error }) (domain.Review, error) {
	var (
		rv        domain.Review
		deletedAt sql.NullTime
	)
	err := row.Scan(&rv.ID, &rv.UserID, &rv.HotelID, &rv.Rating, &rv.Comment,
		&rv.CreatedAt, &rv.UpdatedAt, &deletedAt)
	if err != nil {
		return domain.Review{}, err
	}
	rv.DeletedAt = ptrTime(deletedAt)
	return rv, nil
}

func (r *Repo) GetReview(ctx context.Context, id int64) (domain.Review, error) {
	rv, err := r.scanReview(r.conn(ctx).QueryRowContext(ctx, getReviewSQL, id))
	if err == sql.ErrNoRows {
		return domain.Review{}, domain.ErrNotFound
	}
	return rv, err
}

func (r *Repo) ListReviewsByHotel(ctx context.Context, hotelID int64, pg domain.PageQuery) (domain.ReviewsPage, error) {
	var total int
	if err := r.conn(ctx).QueryRowContext(ctx, countReviewsByHotelSQL, hotelID).Scan(&total); err != nil {
		return domain.ReviewsPage{}, err
	}

	rows, err := r.conn(ctx).QueryContext(ctx, listReviewsByHotelSQL, hotelID, pg.Limit, pg.Offset)
	if err != nil {
		return domain.ReviewsPage{}, err
	}
	defer rows.Close()

	var out []domain.Review
	for rows.Next() {
		rv, err := r.scanReview(rows)
		if err != nil {
			return domain.ReviewsPage{}, err
		}
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return domain.ReviewsPage{}, err
	}
	return domain.ReviewsPage{Items: out, Total: total}, nil
}

func (r *Repo) ExistsLiveReview(ctx context.Context, userID, hotelID int64) (bool, error) {
	var ok bool
	err := r.conn(ctx).QueryRowContext(ctx, existsLiveReviewSQL, userID, hotelID).Scan(&ok)
	return ok, err
}

func (r *Repo) SoftDeleteReview(ctx context.Context, id int64) error {
	res, err := r.conn(ctx).ExecContext(ctx, softDeleteReviewSQL, id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

// ---- users ----

func (r *Repo) CreateUser(ctx context.Context, u *domain.User) error {
	res, err := r.conn(ctx).ExecContext(ctx, insertUserSQL,
		u.Email, u.PasswordHash, u.FullName, string(u.Role))
	if err != nil {
		if isDupKey(err) {
			return domain.ErrEmailTaken
		}
		return err
	}
	u.ID, err = res.LastInsertId()
	return err
}

func (r *Repo) scanUser(row interface{ Scan(...any) error }) (domain.User, error) {
	var (
		u         domain.User
		role      string
		deletedAt sql.NullTime
	)
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &role,
		&u.CreatedAt, &u.UpdatedAt, &deletedAt)
	if err != nil {
		return domain.User{}, err
	}
	u.Role = domain.Role(role)
	u.DeletedAt = ptrTime(deletedAt)
	return u, nil
}

func (r *Repo) GetUser(ctx context.Context, id int64) (domain.User, error) {
	u, err := r.scanUser(r.conn(ctx).QueryRowContext(ctx, getUserSQL, id))
	if err == sql.ErrNoRows {
		return domain.User{}, domain.ErrNotFound
	}
	return u, err
}

func (r *Repo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	u, err := r.scanUser(r.conn(ctx).QueryRowContext(ctx, getUserByEmailSQL, email))
	if err == sql.ErrNoRows {
		return domain.User{}, domain.ErrNotFound
	}
	return u, err
}

func affectedOrNotFound(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
