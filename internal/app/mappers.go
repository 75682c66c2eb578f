package app

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"lightbnb/internal/domain"
)

/********** alias registries **********/

var userAliases = map[string][]string{
	"id":       {"id", "user_id", "userId"},
	"name":     {"name", "full_name", "fullName"},
	"email":    {"email", "email_address", "emailAddress", "contact.email"},
	"password": {"password", "password_hash", "passwordHash"},
}

var propertyAliases = map[string][]string{
	"owner":       {"owner_id", "ownerId", "owner.id", "owner"},
	"title":       {"title", "name"},
	"description": {"description", "summary"},
	"thumbnail":   {"thumbnail_photo_url", "thumbnailPhotoUrl", "photos.thumbnail"},
	"cover":       {"cover_photo_url", "coverPhotoUrl", "photos.cover"},
	"cents":       {"cost_per_night", "costPerNight"},
	"major":       {"price_per_night", "pricePerNight"},
	"street":      {"street", "address.street"},
	"city":        {"city", "address.city"},
	"province":    {"province", "address.province", "state"},
	"post_code":   {"post_code", "postCode", "address.post_code", "zip"},
	"country":     {"country", "address.country"},
	"parking":     {"parking_spaces", "parkingSpaces"},
	"bathrooms":   {"number_of_bathrooms", "numberOfBathrooms", "bathrooms"},
	"bedrooms":    {"number_of_bedrooms", "numberOfBedrooms", "bedrooms"},
}

/********** tiny helpers **********/

// lookupAny: nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

func lookupStr(m map[string]any, path string) string {
	if s, ok := lookupAny(m, path).(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func firstStr(m map[string]any, aliases map[string][]string, key string) string {
	for _, p := range aliases[key] {
		if s := lookupStr(m, p); s != "" {
			return s
		}
	}
	return ""
}

// firstDecimalFlexible: number from several paths (float64/int/string like "93,50").
func firstDecimalFlexible(m map[string]any, paths ...string) *decimal.Decimal {
	for _, k := range paths {
		var d decimal.Decimal
		switch v := lookupAny(m, k).(type) {
		case float64:
			d = decimal.NewFromFloat(v)
		case int:
			d = decimal.NewFromInt(int64(v))
		case int64:
			d = decimal.NewFromInt(v)
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if s == "" {
				continue
			}
			var err error
			if d, err = decimal.NewFromString(s); err != nil {
				continue
			}
		default:
			continue
		}
		return &d
	}
	return nil
}

// firstInt64Flexible: int64 from several paths (float64/int/string).
func firstInt64Flexible(m map[string]any, paths ...string) *int64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			x := int64(v)
			return &x
		case int:
			x := int64(v)
			return &x
		case int64:
			x := v
			return &x
		case string:
			s := strings.TrimSpace(v)
			if s == "" {
				continue
			}
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				return &n
			}
		}
	}
	return nil
}

func intOr0(m map[string]any, aliases map[string][]string, key string) int {
	if v := firstInt64Flexible(m, aliases[key]...); v != nil {
		return int(*v)
	}
	return 0
}

/********** mappers **********/

var errMissingField = errors.New("missing field")

// mapUser returns the user and the id the fixture file knows it by (0 if none).
func mapUser(m map[string]any) (domain.User, int64, error) {
	u := domain.User{
		Name:     firstStr(m, userAliases, "name"),
		Email:    firstStr(m, userAliases, "email"),
		Password: firstStr(m, userAliases, "password"),
	}
	if u.Name == "" {
		return domain.User{}, 0, fmt.Errorf("user: %w: name", errMissingField)
	}
	if u.Email == "" {
		return domain.User{}, 0, fmt.Errorf("user %q: %w: email", u.Name, errMissingField)
	}
	var ref int64
	if v := firstInt64Flexible(m, userAliases["id"]...); v != nil {
		ref = *v
	}
	return u, ref, nil
}

// mapProperty returns the property with OwnerID still in fixture id space.
// cost_per_night is taken as cents; price_per_night as major units.
func mapProperty(m map[string]any) (domain.Property, error) {
	p := domain.Property{
		Title:             firstStr(m, propertyAliases, "title"),
		Description:       firstStr(m, propertyAliases, "description"),
		ThumbnailPhotoURL: firstStr(m, propertyAliases, "thumbnail"),
		CoverPhotoURL:     firstStr(m, propertyAliases, "cover"),
		Street:            firstStr(m, propertyAliases, "street"),
		City:              firstStr(m, propertyAliases, "city"),
		Province:          firstStr(m, propertyAliases, "province"),
		PostCode:          firstStr(m, propertyAliases, "post_code"),
		Country:           firstStr(m, propertyAliases, "country"),
		ParkingSpaces:     intOr0(m, propertyAliases, "parking"),
		NumberOfBathrooms: intOr0(m, propertyAliases, "bathrooms"),
		NumberOfBedrooms:  intOr0(m, propertyAliases, "bedrooms"),
	}
	if p.Title == "" {
		return domain.Property{}, fmt.Errorf("property: %w: title", errMissingField)
	}
	owner := firstInt64Flexible(m, propertyAliases["owner"]...)
	if owner == nil {
		return domain.Property{}, fmt.Errorf("property %q: %w: owner_id", p.Title, errMissingField)
	}
	p.OwnerID = *owner

	if c := firstInt64Flexible(m, propertyAliases["cents"]...); c != nil {
		p.CostPerNight = *c
	} else if d := firstDecimalFlexible(m, propertyAliases["major"]...); d != nil {
		cents, ok := domain.ToCents(*d)
		if !ok {
			return domain.Property{}, fmt.Errorf("property %q: price_per_night %s out of range", p.Title, d.String())
		}
		p.CostPerNight = cents
	}
	return p, nil
}
