package clients

import (
	"slices"
	"strings"
)

func Normalize(c *Client) error {
	c.CompanyName = strings.TrimSpace(c.CompanyName)
	c.ContactPerson = strings.TrimSpace(c.ContactPerson)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	c.Phone = strings.TrimSpace(c.Phone)
	c.Address = strings.TrimSpace(c.Address)
	if c.Status == "" {
		c.Status = StatusActive
	}
	if c.CompanyName == "" {
		return ErrNameRequired
	}
	if !slices.Contains(Statuses, c.Status) {
		return ErrInvalidStatus
	}
	return nil
}
