package mysql

const userColumns = `id, name, email, password`

// The table collation is case-insensitive; utf8mb4_bin keeps the exact mode exact.
const getUserByEmailSQL = `
SELECT ` + userColumns + `
FROM users
WHERE email COLLATE utf8mb4_bin = ?
ORDER BY id
LIMIT 1
`

const getUserByEmailFoldSQL = `
SELECT ` + userColumns + `
FROM users
WHERE LOWER(email) = LOWER(?)
ORDER BY id
LIMIT 1
`

const getUserByIDSQL = `
SELECT ` + userColumns + `
FROM users
WHERE id = ?
`

const insertUserSQL = `
INSERT INTO users (name, email, password)
VALUES (?, ?, ?)
`

// Column order must match propertyDest.
const propertyColumns = `
  properties.id,
  properties.title,
  properties.description,
  properties.thumbnail_photo_url,
  properties.cover_photo_url,
  properties.cost_per_night,
  properties.street,
  properties.city,
  properties.province,
  properties.post_code,
  properties.country,
  properties.parking_spaces,
  properties.number_of_bathrooms,
  properties.number_of_bedrooms,
  properties.owner_id`

const getPropertyByIDSQL = `
SELECT` + propertyColumns + `
FROM properties
WHERE properties.id = ?
`

const insertPropertySQL = `
INSERT INTO properties
  (title, description, thumbnail_photo_url, cover_photo_url, cost_per_night,
   street, city, province, post_code, country,
   parking_spaces, number_of_bathrooms, number_of_bedrooms, owner_id)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const searchPropertiesHead = `
SELECT` + propertyColumns + `,
  AVG(property_reviews.rating) AS average_rating
FROM properties
LEFT JOIN property_reviews ON properties.id = property_reviews.property_id
`

// Completed stays only: end_date strictly before today.
const guestReservationsSQL = `
SELECT
  reservations.id,
  reservations.property_id,
  reservations.guest_id,
  reservations.start_date,
  reservations.end_date,` + propertyColumns + `,
  AVG(property_reviews.rating) AS average_rating
FROM reservations
JOIN properties ON reservations.property_id = properties.id
LEFT JOIN property_reviews ON properties.id = property_reviews.property_id
WHERE reservations.guest_id = ?
  AND reservations.end_date < CURDATE()
GROUP BY properties.id, reservations.id
ORDER BY reservations.start_date
LIMIT ?
`
