package postgres

const userColumns = `id, name, email, password`

const getUserByEmailSQL = `
SELECT ` + userColumns + `
FROM users
WHERE email = $1
ORDER BY id
LIMIT 1
`

const getUserByEmailFoldSQL = `
SELECT ` + userColumns + `
FROM users
WHERE lower(email) = lower($1)
ORDER BY id
LIMIT 1
`

const getUserByIDSQL = `
SELECT ` + userColumns + `
FROM users
WHERE id = $1
`

const insertUserSQL = `
INSERT INTO users (name, email, password)
VALUES ($1, $2, $3)
RETURNING ` + userColumns

// Column order must match scanProperty.
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

const insertPropertySQL = `
INSERT INTO properties
  (title, description, thumbnail_photo_url, cover_photo_url, cost_per_night,
   street, city, province, post_code, country,
   parking_spaces, number_of_bathrooms, number_of_bedrooms, owner_id)
VALUES
  ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
RETURNING` + propertyColumns

// Filters are appended by the property repository.
const searchPropertiesHead = `
SELECT` + propertyColumns + `,
  avg(property_reviews.rating)::float8 AS average_rating
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
  avg(property_reviews.rating)::float8 AS average_rating
FROM reservations
JOIN properties ON reservations.property_id = properties.id
LEFT JOIN property_reviews ON properties.id = property_reviews.property_id
WHERE reservations.guest_id = $1
  AND reservations.end_date < now()::date
GROUP BY properties.id, reservations.id
ORDER BY reservations.start_date
LIMIT $2
`
