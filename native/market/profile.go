package market

import (
	"math/big"
	"strings"
)

const (
	maxNicknameLen = 64
	maxBioLen      = 512
	maxLinkLen     = 256
	maxLinks       = 8
)

// DenomTotal is a running per-denomination volume counter. Stored as a slice
// rather than a map so records encode deterministically.
type DenomTotal struct {
	Denom  string
	Amount *big.Int
}

// ProfileLink is a labelled external link on a profile.
type ProfileLink struct {
	Label string
	URL   string
}

// Profile tracks an address's loyalty tier, cumulative trade volume by
// denomination, and optional display metadata. Profiles are created lazily
// the first time an address participates in a transition that needs one.
type Profile struct {
	Address   [20]byte
	Level     uint32
	Buys      []DenomTotal
	Sells     []DenomTotal
	Nickname  string
	Bio       string
	Avatar    string
	Links     []ProfileLink
	CreatedAt int64
}

// NewProfile returns an empty level-zero profile for the address.
func NewProfile(address [20]byte, now int64) *Profile {
	return &Profile{Address: address, CreatedAt: now}
}

// Clone returns a deep copy of the profile.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	clone := *p
	clone.Buys = cloneTotals(p.Buys)
	clone.Sells = cloneTotals(p.Sells)
	clone.Links = append([]ProfileLink(nil), p.Links...)
	return &clone
}

func cloneTotals(totals []DenomTotal) []DenomTotal {
	if len(totals) == 0 {
		return nil
	}
	out := make([]DenomTotal, len(totals))
	for i, t := range totals {
		out[i] = DenomTotal{Denom: t.Denom, Amount: cloneBigInt(t.Amount)}
	}
	return out
}

func addTotal(totals []DenomTotal, denom string, amount *big.Int) []DenomTotal {
	if amount == nil || amount.Sign() <= 0 {
		return totals
	}
	for i := range totals {
		if totals[i].Denom == denom {
			totals[i].Amount = new(big.Int).Add(cloneBigInt(totals[i].Amount), amount)
			return totals
		}
	}
	return append(totals, DenomTotal{Denom: denom, Amount: cloneBigInt(amount)})
}

func lookupTotal(totals []DenomTotal, denom string) *big.Int {
	for _, t := range totals {
		if t.Denom == denom {
			return cloneBigInt(t.Amount)
		}
	}
	return big.NewInt(0)
}

// AddBuy accumulates realized buy volume for the denomination.
func (p *Profile) AddBuy(denom string, amount *big.Int) {
	p.Buys = addTotal(p.Buys, denom, amount)
}

// AddSell accumulates realized sell volume for the denomination.
func (p *Profile) AddSell(denom string, amount *big.Int) {
	p.Sells = addTotal(p.Sells, denom, amount)
}

// BuyVolume returns the cumulative buy volume for the denomination.
func (p *Profile) BuyVolume(denom string) *big.Int {
	return lookupTotal(p.Buys, denom)
}

// SellVolume returns the cumulative sell volume for the denomination.
func (p *Profile) SellVolume(denom string) *big.Int {
	return lookupTotal(p.Sells, denom)
}

// ProfileMetadata carries the optional display fields settable through
// UpdateProfile. Nil pointers leave the corresponding field untouched.
type ProfileMetadata struct {
	Nickname *string
	Bio      *string
	Avatar   *string
	Links    []ProfileLink
}

// Apply validates the metadata and writes it onto the profile.
func (m ProfileMetadata) Apply(p *Profile) error {
	if p == nil {
		return ErrProfileNotFound
	}
	if m.Nickname != nil {
		nick := strings.TrimSpace(*m.Nickname)
		if len(nick) > maxNicknameLen {
			return wrapf(ErrInvalidProfileField, "nickname exceeds %d characters", maxNicknameLen)
		}
		p.Nickname = nick
	}
	if m.Bio != nil {
		bio := strings.TrimSpace(*m.Bio)
		if len(bio) > maxBioLen {
			return wrapf(ErrInvalidProfileField, "bio exceeds %d characters", maxBioLen)
		}
		p.Bio = bio
	}
	if m.Avatar != nil {
		avatar := strings.TrimSpace(*m.Avatar)
		if len(avatar) > maxLinkLen {
			return wrapf(ErrInvalidProfileField, "avatar link exceeds %d characters", maxLinkLen)
		}
		p.Avatar = avatar
	}
	if m.Links != nil {
		if len(m.Links) > maxLinks {
			return wrapf(ErrInvalidProfileField, "more than %d links", maxLinks)
		}
		links := make([]ProfileLink, 0, len(m.Links))
		for _, link := range m.Links {
			label := strings.TrimSpace(link.Label)
			url := strings.TrimSpace(link.URL)
			if len(label) > maxNicknameLen || len(url) > maxLinkLen {
				return wrapf(ErrInvalidProfileField, "link field too long")
			}
			links = append(links, ProfileLink{Label: label, URL: url})
		}
		p.Links = links
	}
	return nil
}
