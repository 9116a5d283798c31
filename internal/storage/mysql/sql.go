package mysql

// Soft-deleted rows are excluded from every default read; only the explicit
// hard-delete statements touch them.

const insertHotelSQL = `
INSERT INTO hotels (name, address, city, country, rating)
VALUES (?, ?, ?, ?, ?)
`

const getHotelSQL = `
SELECT id, name, address, city, country, rating, created_at, updated_at, deleted_at
FROM hotels
WHERE id = ? AND deleted_at IS NULL
`

const updateHotelSQL = `
UPDATE hotels
SET name = ?, address = ?, city = ?, country = ?, rating = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ? AND deleted_at IS NULL
`

const existsHotelByNameCitySQL = `
SELECT EXISTS(
  SELECT 1 FROM hotels WHERE name = ? AND city = ? AND deleted_at IS NULL
)
`

// Cascade order: bookings of the hotel's rooms, then rooms, then the hotel.
const softDeleteHotelBookingsSQL = `
UPDATE bookings b
JOIN rooms r ON r.id = b.room_id
SET b.deleted_at = CURRENT_TIMESTAMP, b.updated_at = CURRENT_TIMESTAMP
WHERE r.hotel_id = ? AND b.deleted_at IS NULL
`

const softDeleteHotelRoomsSQL = `
UPDATE rooms
SET deleted_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
WHERE hotel_id = ? AND deleted_at IS NULL
`

const softDeleteHotelSQL = `
UPDATE hotels
SET deleted_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
WHERE id = ? AND deleted_at IS NULL
`

const hardDeleteHotelBookingsSQL = `
DELETE b FROM bookings b
JOIN rooms r ON r.id = b.room_id
WHERE r.hotel_id = ?
`

const hardDeleteHotelReviewsSQL = `DELETE FROM reviews WHERE hotel_id = ?`
const hardDeleteHotelRoomsSQL = `DELETE FROM rooms WHERE hotel_id = ?`
const hardDeleteHotelSQL = `DELETE FROM hotels WHERE id = ?`

const insertRoomSQL = `
INSERT INTO rooms (hotel_id, room_number, room_type, price_per_night, capacity)
VALUES (?, ?, ?, ?, ?)
`

const getRoomSQL = `
SELECT id, hotel_id, room_number, room_type, price_per_night, capacity, created_at, updated_at, deleted_at
FROM rooms
WHERE id = ? AND deleted_at IS NULL
`

const getRoomForUpdateSQL = getRoomSQL + ` FOR UPDATE`

const listRoomsByHotelSQL = `
SELECT id, hotel_id, room_number, room_type, price_per_night, capacity, created_at, updated_at, deleted_at
FROM rooms
WHERE hotel_id = ? AND deleted_at IS NULL
ORDER BY room_number
LIMIT ? OFFSET ?
`

const updateRoomSQL = `
UPDATE rooms
SET room_number = ?, room_type = ?, price_per_night = ?, capacity = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ? AND deleted_at IS NULL
`

const softDeleteRoomBookingsSQL = `
UPDATE bookings
SET deleted_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
WHERE room_id = ? AND deleted_at IS NULL
`

const softDeleteRoomSQL = `
UPDATE rooms
SET deleted_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
WHERE id = ? AND deleted_at IS NULL
`

const bookingColumns = `id, user_id, room_id, check_in, check_out, total_price, status, cancellation_reason, created_at, updated_at, deleted_at`

const insertBookingSQL = `
INSERT INTO bookings (user_id, room_id, check_in, check_out, total_price, status, cancellation_reason)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

const getBookingSQL = `
SELECT ` + bookingColumns + `
FROM bookings
WHERE id = ? AND deleted_at IS NULL
`

const updateBookingSQL = `
UPDATE bookings
SET check_in = ?, check_out = ?, total_price = ?, status = ?, cancellation_reason = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ? AND deleted_at IS NULL
`

const listBookingsByUserSQL = `
SELECT ` + bookingColumns + `
FROM bookings
WHERE user_id = ? AND deleted_at IS NULL
ORDER BY check_in DESC, id DESC
LIMIT ? OFFSET ?
`

const listBookingsByRoomSQL = `
SELECT ` + bookingColumns + `
FROM bookings
WHERE room_id = ? AND deleted_at IS NULL
ORDER BY check_in DESC, id DESC
LIMIT ? OFFSET ?
`

// Half-open interval intersection: existing [check_in, check_out) meets the
// requested [?, ?) iff check_in < requested_out AND check_out > requested_in.
// Cancelled bookings never conflict; completed ones still hold their range.
const listOverlappingSQL = `
SELECT ` + bookingColumns + `
FROM bookings
WHERE room_id = ?
  AND deleted_at IS NULL
  AND status <> ?
  AND check_in < ?
  AND check_out > ?
  AND id <> ?
ORDER BY check_in
`

const activeBookingIDsSQL = `
SELECT id
FROM bookings
WHERE room_id = ?
  AND deleted_at IS NULL
  AND status <> ?
  AND check_out > ?
ORDER BY id
`

const hasCompletedStaySQL = `
SELECT EXISTS(
  SELECT 1
  FROM bookings b
  JOIN rooms r ON r.id = b.room_id
  WHERE b.user_id = ? AND r.hotel_id = ? AND b.status = ? AND b.deleted_at IS NULL
)
`

const insertPaymentSQL = `
INSERT INTO payments (booking_id, amount, currency, status, method, transaction_id, paid_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

const paymentColumns = `id, booking_id, amount, currency, status, method, transaction_id, paid_at, created_at, updated_at`

const getPaymentSQL = `
SELECT ` + paymentColumns + `
FROM payments
WHERE id = ?
`

const getPaymentByBookingSQL = `
SELECT ` + paymentColumns + `
FROM payments
WHERE booking_id = ?
`

const updatePaymentSQL = `
UPDATE payments
SET status = ?, transaction_id = ?, paid_at = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?
`

const insertReviewSQL = `
INSERT INTO reviews (user_id, hotel_id, rating, comment)
VALUES (?, ?, ?, ?)
`

const getReviewSQL = `
SELECT id, user_id, hotel_id, rating, comment, created_at, updated_at, deleted_at
FROM reviews
WHERE id = ? AND deleted_at IS NULL
`

const listReviewsByHotelSQL = `
SELECT id, user_id, hotel_id, rating, comment, created_at, updated_at, deleted_at
FROM reviews
WHERE hotel_id = ? AND deleted_at IS NULL
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?
`

const countReviewsByHotelSQL = `
SELECT COUNT(*) FROM reviews WHERE hotel_id = ? AND deleted_at IS NULL
`

const existsLiveReviewSQL = `
SELECT EXISTS(
  SELECT 1 FROM reviews WHERE user_id = ? AND hotel_id = ? AND deleted_at IS NULL
)
`

const softDeleteReviewSQL = `
UPDATE reviews
SET deleted_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
WHERE id = ? AND deleted_at IS NULL
`

const insertUserSQL = `
INSERT INTO users (email, password_hash, full_name, role)
VALUES (?, ?, ?, ?)
`

const getUserSQL = `
SELECT id, email, password_hash, full_name, role, created_at, updated_at, deleted_at
FROM users
WHERE id = ? AND deleted_at IS NULL
`

const getUserByEmailSQL = `
SELECT id, email, password_hash, full_name, role, created_at, updated_at, deleted_at
FROM users
WHERE email = ? AND deleted_at IS NULL
`
