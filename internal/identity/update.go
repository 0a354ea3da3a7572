package identity

import "time"

// UserUpdate is a typed partial update for user profile fields. Only non-nil
// fields are written, and only these fields are patchable at all.
type UserUpdate struct {
	Username       *string
	AvatarURL      *string
	Bio            *string
	Contact        *string
	BirthDate      *time.Time
	Location       *string
	Email          *string
	NotifyMessages *bool
	NotifyInterest *bool
}

func (u UserUpdate) fields() map[string]interface{} {
	fields := make(map[string]interface{})
	if u.Username != nil {
		fields["username"] = *u.Username
	}
	if u.AvatarURL != nil {
		fields["avatar_url"] = *u.AvatarURL
	}
	if u.Bio != nil {
		fields["bio"] = *u.Bio
	}
	if u.Contact != nil {
		fields["contact"] = *u.Contact
	}
	if u.BirthDate != nil {
		fields["birth_date"] = *u.BirthDate
	}
	if u.Location != nil {
		fields["location"] = *u.Location
	}
	if u.Email != nil {
		fields["email"] = *u.Email
	}
	if u.NotifyMessages != nil {
		fields["notify_messages"] = *u.NotifyMessages
	}
	if u.NotifyInterest != nil {
		fields["notify_interest"] = *u.NotifyInterest
	}
	return fields
}
