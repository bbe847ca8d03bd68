// Package catalog provides domain types for the hackathon project catalog:
// raw upstream records, their indexed document form, and text normalization.
package catalog

// Prize is a single prize entry attached to a project submission.
type Prize struct {
	name                string
	detail              string
	prizeType           string
	sponsor             string
	sponsorOrganization string
}

// NewPrize creates a Prize.
func NewPrize(name, detail, prizeType, sponsor, sponsorOrganization string) Prize {
	return Prize{
		name:                name,
		detail:              detail,
		prizeType:           prizeType,
		sponsor:             sponsor,
		sponsorOrganization: sponsorOrganization,
	}
}

// Name returns the prize name.
func (p Prize) Name() string { return p.name }

// Detail returns the submission-specific prize detail.
func (p Prize) Detail() string { return p.detail }

// Type returns the prize type.
func (p Prize) Type() string { return p.prizeType }

// Sponsor returns the sponsor name.
func (p Prize) Sponsor() string { return p.sponsor }

// SponsorOrganization returns the sponsoring organization name.
func (p Prize) SponsorOrganization() string { return p.sponsorOrganization }

// ProjectRecord is the raw upstream representation of a submitted project.
// All text fields are optional; absent fields are empty strings.
type ProjectRecord struct {
	id            string
	slug          string
	name          string
	tagline       string
	description   string
	howItsMade    string
	sourceCodeURL string
	eventName     string
	logoURL       string
	bannerURL     string
	prizes        []Prize
}

// NewProjectRecord creates a ProjectRecord with the given identifier and
// free-text fields. Remaining fields are set via the With* methods.
func NewProjectRecord(id, name, tagline, description, howItsMade string) ProjectRecord {
	return ProjectRecord{
		id:          id,
		name:        name,
		tagline:     tagline,
		description: description,
		howItsMade:  howItsMade,
	}
}

// WithSlug returns a copy with the slug set.
func (r ProjectRecord) WithSlug(slug string) ProjectRecord {
	r.slug = slug
	return r
}

// WithEventName returns a copy with the event name set.
func (r ProjectRecord) WithEventName(name string) ProjectRecord {
	r.eventName = name
	return r
}

// WithSourceCodeURL returns a copy with the source code URL set.
func (r ProjectRecord) WithSourceCodeURL(url string) ProjectRecord {
	r.sourceCodeURL = url
	return r
}

// WithLogoURL returns a copy with the logo URL set.
func (r ProjectRecord) WithLogoURL(url string) ProjectRecord {
	r.logoURL = url
	return r
}

// WithBannerURL returns a copy with the banner URL set.
func (r ProjectRecord) WithBannerURL(url string) ProjectRecord {
	r.bannerURL = url
	return r
}

// WithPrizes returns a copy with the prize entries set.
func (r ProjectRecord) WithPrizes(prizes []Prize) ProjectRecord {
	cp := make([]Prize, len(prizes))
	copy(cp, prizes)
	r.prizes = cp
	return r
}

// ID returns the stable unique project identifier.
func (r ProjectRecord) ID() string { return r.id }

// Slug returns the URL slug.
func (r ProjectRecord) Slug() string { return r.slug }

// Name returns the project name.
func (r ProjectRecord) Name() string { return r.name }

// Tagline returns the tagline.
func (r ProjectRecord) Tagline() string { return r.tagline }

// Description returns the description.
func (r ProjectRecord) Description() string { return r.description }

// HowItsMade returns the "how it's made" text.
func (r ProjectRecord) HowItsMade() string { return r.howItsMade }

// SourceCodeURL returns the source code URL.
func (r ProjectRecord) SourceCodeURL() string { return r.sourceCodeURL }

// EventName returns the event name.
func (r ProjectRecord) EventName() string { return r.eventName }

// LogoURL returns the logo URL.
func (r ProjectRecord) LogoURL() string { return r.logoURL }

// BannerURL returns the banner URL.
func (r ProjectRecord) BannerURL() string { return r.bannerURL }

// Prizes returns the prize entries.
func (r ProjectRecord) Prizes() []Prize {
	cp := make([]Prize, len(r.prizes))
	copy(cp, r.prizes)
	return cp
}

// PrizeTypes returns the distinct prize types across the project's prizes,
// sorted for deterministic indexing.
func (r ProjectRecord) PrizeTypes() []string {
	values := make([]string, 0, len(r.prizes))
	for _, p := range r.prizes {
		values = append(values, p.Type())
	}
	return dedupSorted(values)
}

// SponsorOrganizations returns the distinct sponsor organizations across the
// project's prizes, sorted for deterministic indexing.
func (r ProjectRecord) SponsorOrganizations() []string {
	values := make([]string, 0, len(r.prizes))
	for _, p := range r.prizes {
		values = append(values, p.SponsorOrganization())
	}
	return dedupSorted(values)
}
