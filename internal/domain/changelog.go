package domain

import "time"

// ChangelogKind separates inventory and firmware artifacts.
type ChangelogKind string

const (
	ChangelogInventory ChangelogKind = "inventory"
	ChangelogFirmware  ChangelogKind = "firmware"
)

// ChangelogEntry records a published inventory or firmware artifact.
type ChangelogEntry struct {
	ID          string
	Kind        ChangelogKind
	Title       string
	Version     string
	Description string
	AuthorEmail string
	CreatedAt   time.Time
}
