package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	BusinessName string    `json:"business_name"`
	Locale       string    `json:"locale"`
	AccountType  string    `json:"type"`
	SubTypes     []string  `json:"sub_type"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Admin struct {
	ID           int64
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

type RegisterRequest struct {
	Email        string   `json:"email"`
	Password     string   `json:"password"`
	Name         string   `json:"name"`
	Phone        string   `json:"phone"`
	BusinessName string   `json:"business_name"`
	Locale       string   `json:"locale"`
	SubTypes     []string `json:"sub_type"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UpdateProfileRequest struct {
	Name         *string  `json:"name,omitempty"`
	Phone        *string  `json:"phone,omitempty"`
	BusinessName *string  `json:"business_name,omitempty"`
	Locale       *string  `json:"locale,omitempty"`
	SubTypes     []string `json:"sub_type,omitempty"`
}

// Profile is the public shape of a user. Password hashes never leave the
// service layer.
type Profile struct {
	ID           int64    `json:"id"`
	Email        string   `json:"email"`
	Name         string   `json:"name"`
	Phone        string   `json:"phone"`
	BusinessName string   `json:"business_name"`
	Locale       string   `json:"locale"`
	AccountType  string   `json:"type"`
	SubTypes     []string `json:"sub_type"`
}

// Producer is currently the only account type issued at registration.
const AccountTypeProducer = "Producer"

// Recognized producer sub-types. Values outside this set are dropped
// silently rather than rejected.
const (
	SubTypeFishery         = "Fishery"
	SubTypePoultry         = "Poultry"
	SubTypeAnimalHusbandry = "Animal Husbandry"
)

var validSubTypes = map[string]bool{
	SubTypeFishery:         true,
	SubTypePoultry:         true,
	SubTypeAnimalHusbandry: true,
}

// FilterSubTypes keeps only recognized sub-type values, preserving order
// and removing duplicates.
func FilterSubTypes(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, st := range in {
		st = strings.TrimSpace(st)
		if validSubTypes[st] && !seen[st] {
			seen[st] = true
			out = append(out, st)
		}
	}
	return out
}

func (r *RegisterRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	if r.Email == "" {
		return fmt.Errorf("email is required")
	}
	if !isValidEmail(r.Email) {
		return fmt.Errorf("invalid email format")
	}
	if r.Phone == "" {
		return fmt.Errorf("phone is required")
	}
	if !isValidPhone(r.Phone) {
		return fmt.Errorf("invalid phone format")
	}
	if r.Password == "" {
		return fmt.Errorf("password is required")
	}
	if len(r.Password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	return nil
}

func (r *RegisterRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Name = strings.TrimSpace(r.Name)
	r.Phone = strings.TrimSpace(r.Phone)
	r.BusinessName = strings.TrimSpace(r.BusinessName)
	if r.Locale == "" {
		r.Locale = "en"
	}
	r.SubTypes = FilterSubTypes(r.SubTypes)
}

func (r *LoginRequest) Validate() error {
	if r.Email == "" {
		return fmt.Errorf("email is required")
	}
	if r.Password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

func (r *LoginRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

func (r *UpdateProfileRequest) Validate() error {
	if r.Phone != nil && !isValidPhone(*r.Phone) {
		return fmt.Errorf("invalid phone format")
	}
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		return fmt.Errorf("name cannot be empty")
	}
	return nil
}

func (r *UpdateProfileRequest) Normalize() {
	r.SubTypes = FilterSubTypes(r.SubTypes)
}

func (u *User) ToProfile() *Profile {
	return &Profile{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Phone:        u.Phone,
		BusinessName: u.BusinessName,
		Locale:       u.Locale,
		AccountType:  u.AccountType,
		SubTypes:     u.SubTypes,
	}
}

// Helper functions
func isValidEmail(email string) bool {
	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	return emailRegex.MatchString(email)
}

func isValidPhone(phone string) bool {
	phoneRegex := regexp.MustCompile(`^[\+]?[\d\s\-\(\)]+$`)
	return phoneRegex.MatchString(phone) && len(phone) >= 7
}
