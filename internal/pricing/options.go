package pricing

import (
	"os"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownGiftWrap     = errors.New("unknown gift wrap")
	ErrUnknownDeliverySlot = errors.New("unknown delivery slot")
)

// DefaultGiftWrapID is used when a gift order names no wrap
const DefaultGiftWrapID = "signature"

// GiftWrapOption is a packaging tier offered on gift orders
type GiftWrapOption struct {
	ID          string          `yaml:"id" json:"id"`
	Name        string          `yaml:"name" json:"name"`
	Description string          `yaml:"description" json:"description"`
	Surcharge   decimal.Decimal `yaml:"surcharge" json:"surcharge"`
}

// DeliveryOption is a delivery time slot
type DeliveryOption struct {
	ID        string          `yaml:"id" json:"id"`
	Label     string          `yaml:"label" json:"label"`
	Surcharge decimal.Decimal `yaml:"surcharge" json:"surcharge"`
}

// Options holds the static gift wrap and delivery slot catalogs
type Options struct {
	GiftWraps     []GiftWrapOption `yaml:"gift_wraps" json:"gift_wraps"`
	DeliverySlots []DeliveryOption `yaml:"delivery_slots" json:"delivery_slots"`
}

// DefaultOptions returns the built-in catalogs
func DefaultOptions() *Options {
	return &Options{
		GiftWraps: []GiftWrapOption{
			{ID: DefaultGiftWrapID, Name: "Signature Wrap", Description: "Kraft paper and satin ribbon", Surcharge: decimal.Zero},
			{ID: "premium", Name: "Premium Box", Description: "Rigid keepsake box with tissue", Surcharge: decimal.NewFromInt(5)},
			{ID: "luxury", Name: "Luxury Hamper", Description: "Woven hamper with handwritten card", Surcharge: decimal.NewFromInt(12)},
		},
		DeliverySlots: []DeliveryOption{
			{ID: "morning", Label: "Morning (9am - 12pm)", Surcharge: decimal.Zero},
			{ID: "afternoon", Label: "Afternoon (12pm - 4pm)", Surcharge: decimal.Zero},
			{ID: "evening", Label: "Evening (4pm - 8pm)", Surcharge: decimal.Zero},
			{ID: "midnight", Label: "Midnight (11pm - 12am)", Surcharge: decimal.NewFromInt(10)},
			{ID: "fixed-time", Label: "Fixed time (within 1 hour)", Surcharge: decimal.NewFromInt(7)},
		},
	}
}

// LoadOptions reads the catalogs from a YAML file. An empty path returns the
// built-in catalogs; a file missing one of the lists keeps the default list.
func LoadOptions(path string) (*Options, error) {
	opts := DefaultOptions()
	if path == "" {
		return opts, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read checkout options")
	}
	var file Options
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(err, "parse checkout options")
	}
	if len(file.GiftWraps) > 0 {
		opts.GiftWraps = file.GiftWraps
	}
	if len(file.DeliverySlots) > 0 {
		opts.DeliverySlots = file.DeliverySlots
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

func (o *Options) validate() error {
	seen := map[string]bool{}
	for _, w := range o.GiftWraps {
		if w.ID == "" || seen["wrap:"+w.ID] {
			return errors.Errorf("gift wrap id %q is empty or duplicated", w.ID)
		}
		if w.Surcharge.IsNegative() {
			return errors.Errorf("gift wrap %q has a negative surcharge", w.ID)
		}
		seen["wrap:"+w.ID] = true
	}
	for _, s := range o.DeliverySlots {
		if s.ID == "" || seen["slot:"+s.ID] {
			return errors.Errorf("delivery slot id %q is empty or duplicated", s.ID)
		}
		if s.Surcharge.IsNegative() {
			return errors.Errorf("delivery slot %q has a negative surcharge", s.ID)
		}
		seen["slot:"+s.ID] = true
	}
	return nil
}

// GiftWrap resolves a wrap by id; an empty id means the default tier
func (o *Options) GiftWrap(id string) (GiftWrapOption, error) {
	if id == "" {
		id = DefaultGiftWrapID
	}
	for _, w := range o.GiftWraps {
		if w.ID == id {
			return w, nil
		}
	}
	return GiftWrapOption{}, errors.Wrap(ErrUnknownGiftWrap, id)
}

// DeliverySlot resolves a slot by id; an empty id means no slot surcharge
func (o *Options) DeliverySlot(id string) (DeliveryOption, error) {
	if id == "" {
		return DeliveryOption{Surcharge: decimal.Zero}, nil
	}
	for _, s := range o.DeliverySlots {
		if s.ID == id {
			return s, nil
		}
	}
	return DeliveryOption{}, errors.Wrap(ErrUnknownDeliverySlot, id)
}
