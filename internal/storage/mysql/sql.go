package mysql

const upsertRoomSQL = `
INSERT INTO rooms
  (id, name, price, rating, reviews, capacity, size, amenities, description, image, available)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  name        = VALUES(name),
  price       = VALUES(price),
  rating      = VALUES(rating),
  reviews     = VALUES(reviews),
  capacity    = VALUES(capacity),
  size        = VALUES(size),
  amenities   = VALUES(amenities),
  description = VALUES(description),
  image       = VALUES(image),
  available   = VALUES(available),
  updated_at  = CURRENT_TIMESTAMP
`

const roomColumns = `id, name, price, rating, reviews, capacity, size, amenities, description, image, available`

const getRoomSQL = `SELECT ` + roomColumns + ` FROM rooms WHERE id = ?`

// Catalog order is stable across reloads; recommended sort leans on it.
const listRoomsSQL = `SELECT ` + roomColumns + ` FROM rooms ORDER BY created_at, id`

const insertBookingSQL = `
INSERT INTO bookings
  (id, reference, user_id, room_id, room_name, check_in, check_out, guests, total_price, status, created_at, updated_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const saveBookingSQL = `
UPDATE bookings
SET status = ?, updated_at = ?
WHERE id = ?
`

const bookingColumns = `id, reference, user_id, room_id, room_name, check_in, check_out, guests, total_price, status, created_at, updated_at`

const getBookingSQL = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`

// Newest first; aligns with the index on (user_id, created_at)
const listUserBookingsSQL = `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = ? ORDER BY created_at DESC, id`

const listBookingsSinceSQL = `SELECT ` + bookingColumns + ` FROM bookings WHERE created_at >= ? ORDER BY created_at DESC, id`

const insertUserSQL = `
INSERT INTO users (id, email, name, password_hash, role, created_at)
VALUES (?, ?, ?, ?, ?, ?)
`

const userColumns = `id, email, name, password_hash, role, created_at`

const getUserSQL = `SELECT ` + userColumns + ` FROM users WHERE id = ?`

const getUserByEmailSQL = `SELECT ` + userColumns + ` FROM users WHERE email = ?`
