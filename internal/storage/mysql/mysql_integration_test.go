//go:build integration || !unit

package mysql_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/shopspring/decimal"

	"staybook/internal/domain"
	mysqlrepo "staybook/internal/storage/mysql"
)

// ---------- helpers ----------

func mustEnv(t *testing.T, k string) string {
	t.Helper()
	v := os.Getenv(k)
	if v == "" {
		t.Fatalf("%s not set; export it (e.g. MIGRATIONS_DIR=/path/to/sql)", k)
	}
	return v
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := mustEnv(t, "MIGRATIONS_DIR")

	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		t.Fatalf("MIGRATIONS_DIR=%s is not a directory or missing", dir)
	}

	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)

	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}

	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=staybook",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:%s@tcp(127.0.0.1:%s)/%s?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		"root", hostPort, "staybook")

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)
	return db
}

func dt(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ---------- the test ----------

func TestRepo_MySQL_BookingLifecycle(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	// Arrange: hotel, room, user
	h := domain.Hotel{Name: "Grand Plaza", Address: "Av. 1", City: "Lisbon", Country: "PT", Rating: 4.5}
	if err := repo.Create(ctx, &h); err != nil {
		t.Fatalf("Create hotel: %v", err)
	}
	if h.ID == 0 {
		t.Fatalf("hotel id not set")
	}

	r := domain.Room{
		HotelID: h.ID, RoomNumber: "101", Type: domain.RoomDeluxe,
		PricePerNight: decimal.RequireFromString("150.00"), Capacity: 2,
	}
	if err := repo.CreateRoom(ctx, &r); err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}

	dup := domain.Room{HotelID: h.ID, RoomNumber: "101", PricePerNight: decimal.RequireFromString("90.00"), Capacity: 1}
	if err := repo.CreateRoom(ctx, &dup); !errors.Is(err, domain.ErrDuplicateRoomNumber) {
		t.Fatalf("duplicate room err = %v, want ErrDuplicateRoomNumber", err)
	}

	u := domain.User{Email: "ana@example.com", PasswordHash: "x", FullName: "Ana", Role: domain.RoleUser}
	if err := repo.CreateUser(ctx, &u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	u2 := domain.User{Email: "ana@example.com", PasswordHash: "y", FullName: "Ana B", Role: domain.RoleUser}
	if err := repo.CreateUser(ctx, &u2); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("duplicate email err = %v, want ErrEmailTaken", err)
	}

	// Booking inside a transaction with a locked room row
	var b domain.Booking
	err := repo.WithTx(ctx, func(ctx context.Context) error {
		room, err := repo.GetRoomForUpdate(ctx, r.ID)
		if err != nil {
			return err
		}
		b = domain.Booking{
			UserID: u.ID, RoomID: room.ID,
			CheckIn: dt(2025, 2, 1), CheckOut: dt(2025, 2, 5),
			TotalPrice: room.PricePerNight.Mul(decimal.NewFromInt(4)),
			Status:     domain.BookingPending,
		}
		return repo.CreateBooking(ctx, &b)
	})
	if err != nil {
		t.Fatalf("booking tx: %v", err)
	}

	// Overlap query: [Feb 4, Feb 6) conflicts, [Feb 5, Feb 7) does not
	conflicts, err := repo.ListOverlapping(ctx, r.ID, dt(2025, 2, 4), dt(2025, 2, 6), 0)
	if err != nil {
		t.Fatalf("ListOverlapping: %v", err)
	}
	if len(conflicts) != 1 || conflicts[0].ID != b.ID {
		t.Fatalf("conflicts = %+v, want the seeded booking", conflicts)
	}
	free, err := repo.ListOverlapping(ctx, r.ID, dt(2025, 2, 5), dt(2025, 2, 7), 0)
	if err != nil {
		t.Fatalf("ListOverlapping: %v", err)
	}
	if len(free) != 0 {
		t.Fatalf("back-to-back range reported as conflicting: %+v", free)
	}
	// excluding the booking itself empties the conflict set
	self, err := repo.ListOverlapping(ctx, r.ID, dt(2025, 2, 1), dt(2025, 2, 5), b.ID)
	if err != nil {
		t.Fatalf("ListOverlapping: %v", err)
	}
	if len(self) != 0 {
		t.Fatalf("booking conflicts with itself: %+v", self)
	}

	// Cancelled bookings drop out of the conflict set
	b.Status = domain.BookingCancelled
	if err := repo.UpdateBooking(ctx, b); err != nil {
		t.Fatalf("UpdateBooking: %v", err)
	}
	conflicts, err = repo.ListOverlapping(ctx, r.ID, dt(2025, 2, 4), dt(2025, 2, 6), 0)
	if err != nil {
		t.Fatalf("ListOverlapping: %v", err)
	}
	if len(conflicts) != 0 {
		t.Fatalf("cancelled booking still conflicts: %+v", conflicts)
	}

	// Money round-trips with scale preserved
	got, err := repo.GetBooking(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetBooking: %v", err)
	}
	if want := decimal.RequireFromString("600.00"); !got.TotalPrice.Equal(want) {
		t.Fatalf("total = %s, want %s", got.TotalPrice, want)
	}
}

func TestRepo_MySQL_PaymentsAndReviews(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	h := domain.Hotel{Name: "Grand Plaza", Address: "Av. 1", City: "Lisbon", Country: "PT"}
	if err := repo.Create(ctx, &h); err != nil {
		t.Fatalf("Create hotel: %v", err)
	}
	r := domain.Room{HotelID: h.ID, RoomNumber: "101", PricePerNight: decimal.RequireFromString("100.00"), Capacity: 2}
	if err := repo.CreateRoom(ctx, &r); err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	u := domain.User{Email: "bob@example.com", PasswordHash: "x", FullName: "Bob", Role: domain.RoleUser}
	if err := repo.CreateUser(ctx, &u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	b := domain.Booking{
		UserID: u.ID, RoomID: r.ID,
		CheckIn: dt(2024, 11, 1), CheckOut: dt(2024, 11, 3),
		TotalPrice: decimal.RequireFromString("200.00"), Status: domain.BookingCompleted,
	}
	if err := repo.CreateBooking(ctx, &b); err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	// one payment per booking, enforced by the unique key
	p := domain.Payment{
		BookingID: b.ID, Amount: b.TotalPrice, Currency: "EUR",
		Status: domain.PaymentPending, Method: "card", TransactionID: "tx-1",
	}
	if err := repo.CreatePayment(ctx, &p); err != nil {
		t.Fatalf("CreatePayment: %v", err)
	}
	p2 := domain.Payment{BookingID: b.ID, Amount: b.TotalPrice, Currency: "EUR", Method: "card", TransactionID: "tx-2"}
	if err := repo.CreatePayment(ctx, &p2); !errors.Is(err, domain.ErrDuplicatePayment) {
		t.Fatalf("duplicate payment err = %v, want ErrDuplicatePayment", err)
	}

	now := dt(2025, 1, 1)
	p.Status = domain.PaymentSucceeded
	p.PaidAt = &now
	if err := repo.UpdatePayment(ctx, p); err != nil {
		t.Fatalf("UpdatePayment: %v", err)
	}
	gotP, err := repo.GetPaymentByBooking(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetPaymentByBooking: %v", err)
	}
	if gotP.Status != domain.PaymentSucceeded || gotP.PaidAt == nil {
		t.Fatalf("unexpected payment: %+v", gotP)
	}

	// completed stay makes the user review-eligible
	ok, err := repo.HasCompletedStay(ctx, u.ID, h.ID)
	if err != nil {
		t.Fatalf("HasCompletedStay: %v", err)
	}
	if !ok {
		t.Fatalf("completed stay not detected")
	}

	rv := domain.Review{UserID: u.ID, HotelID: h.ID, Rating: 5, Comment: "lovely"}
	if err := repo.CreateReview(ctx, &rv); err != nil {
		t.Fatalf("CreateReview: %v", err)
	}
	live, err := repo.ExistsLiveReview(ctx, u.ID, h.ID)
	if err != nil || !live {
		t.Fatalf("ExistsLiveReview: ok=%v err=%v", live, err)
	}

	page, err := repo.ListReviewsByHotel(ctx, h.ID, domain.PageQuery{Limit: 10})
	if err != nil {
		t.Fatalf("ListReviewsByHotel: %v", err)
	}
	if page.Total != 1 || len(page.Items) != 1 || page.Items[0].Comment != "lovely" {
		t.Fatalf("unexpected reviews page: %+v", page)
	}

	// soft delete hides the review from every default read
	if err := repo.SoftDeleteReview(ctx, rv.ID); err != nil {
		t.Fatalf("SoftDeleteReview: %v", err)
	}
	if live, _ = repo.ExistsLiveReview(ctx, u.ID, h.ID); live {
		t.Fatalf("soft-deleted review still live")
	}
}

func TestRepo_MySQL_HotelCascades(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	h := domain.Hotel{Name: "Seaview", Address: "Rua 2", City: "Faro", Country: "PT"}
	if err := repo.Create(ctx, &h); err != nil {
		t.Fatalf("Create hotel: %v", err)
	}
	r := domain.Room{HotelID: h.ID, RoomNumber: "1", PricePerNight: decimal.RequireFromString("80.00"), Capacity: 2}
	if err := repo.CreateRoom(ctx, &r); err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	u := domain.User{Email: "cara@example.com", PasswordHash: "x", FullName: "Cara", Role: domain.RoleUser}
	if err := repo.CreateUser(ctx, &u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	b := domain.Booking{
		UserID: u.ID, RoomID: r.ID,
		CheckIn: dt(2025, 3, 1), CheckOut: dt(2025, 3, 3),
		TotalPrice: decimal.RequireFromString("160.00"), Status: domain.BookingConfirmed,
	}
	if err := repo.CreateBooking(ctx, &b); err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	if err := repo.SoftDelete(ctx, h.ID); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}

	if _, err := repo.Get(ctx, h.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("hotel visible after soft delete: %v", err)
	}
	if _, err := repo.GetRoom(ctx, r.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("room visible after soft delete: %v", err)
	}
	if _, err := repo.GetBooking(ctx, b.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("booking visible after soft delete: %v", err)
	}

	// hard delete removes the rows entirely
	if err := repo.HardDelete(ctx, h.ID); err != nil {
		t.Fatalf("HardDelete: %v", err)
	}
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM rooms WHERE hotel_id = ?", h.ID).Scan(&n); err != nil {
		t.Fatalf("count rooms: %v", err)
	}
	if n != 0 {
		t.Fatalf("rooms remain after hard delete: %d", n)
	}
}
