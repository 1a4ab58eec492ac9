package services

import (
	"context"

	"creativehub/internal/domain"
	"creativehub/internal/repos"
	"creativehub/internal/validate"
)

type ProfileService struct {
	Users *repos.UserRepo
}

type ProfileInput struct {
	FullName  string
	Bio       string
	Website   string
	Location  string
	Phone     string
	AvatarURL string // empty keeps the current avatar
}

func (s *ProfileService) Get(ctx context.Context, userID string) (domain.Profile, error) {
	return s.Users.Profile(ctx, userID)
}

// Check validates in the way Update does without writing and returns the
// current profile.
func (s *ProfileService) Check(ctx context.Context, userID string, in ProfileInput) (domain.Profile, error) {
	_, cur, err := s.prepare(ctx, userID, in)
	return cur, err
}

func (s *ProfileService) Update(ctx context.Context, userID string, in ProfileInput) (domain.Profile, error) {
	p, _, err := s.prepare(ctx, userID, in)
	if err != nil {
		return domain.Profile{}, err
	}
	return p, s.Users.UpsertProfile(ctx, p)
}

func (s *ProfileService) prepare(ctx context.Context, userID string, in ProfileInput) (p, cur domain.Profile, err error) {
	fe := validate.Errors{}
	name, ok := validate.Text(in.FullName, 80, false)
	fe.Check(ok, "full_name", "Name is too long")
	bio, ok := validate.Text(in.Bio, 500, false)
	fe.Check(ok, "bio", "Bio must be 500 characters or fewer")
	site, ok := validate.URL(in.Website)
	fe.Check(ok, "website", "Website must start with http:// or https://")
	loc, ok := validate.Text(in.Location, 80, false)
	fe.Check(ok, "location", "Location is too long")
	phone, ok := validate.Text(in.Phone, 20, false)
	if ok && phone != "" {
		phone, ok = validate.Phone(phone)
	}
	fe.Check(ok, "phone", "Enter a phone number like +15550100")
	if err := invalid(fe); err != nil {
		return p, cur, err
	}

	if cur, err = s.Users.Profile(ctx, userID); err != nil {
		return p, cur, err
	}
	p = domain.Profile{
		UserID: userID, FullName: name, Bio: bio, Website: site, Location: loc, Phone: phone,
		AvatarURL: cur.AvatarURL,
	}
	if in.AvatarURL != "" {
		p.AvatarURL = in.AvatarURL
	}
	return p, cur, nil
}
