package apitest

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/ngochuy-hya/uteshop-storefront/internal/coupon"
)

// Seeded account the tests log in with.
const (
	SeedEmail    = "lan.nguyen@example.com"
	SeedPassword = "hunter2-go"
)

type storeUser struct {
	ID           int
	Email        string
	PasswordHash []byte
	FirstName    string
	LastName     string
	Phone        string
	AvatarURL    string
}

type storeProduct struct {
	ID       int
	Title    string
	Brand    string
	Category string
	Price    decimal.Decimal
	OldPrice *decimal.Decimal
	Discount int
	Stock    int
	IsActive bool
	Colors   []string
	Sizes    []string
	ImgSrc   string
}

type cartRow struct {
	ID        int
	ProductID int
	Quantity  int
	Color     string
	Size      string
}

type wishlistRow struct {
	ID        int
	ProductID int
}

type addressRow struct {
	ID        int
	Name      string
	Phone     string
	Line      string
	Ward      string
	District  string
	City      string
	IsDefault bool
}

type orderRow struct {
	ID            int
	Code          string
	Status        string
	Items         []orderLine
	Subtotal      decimal.Decimal
	Discount      decimal.Decimal
	Shipping      decimal.Decimal
	Tax           decimal.Decimal
	Total         decimal.Decimal
	PaymentMethod string
	CreatedAt     time.Time
}

type orderLine struct {
	ProductID int
	Title     string
	Quantity  int
	UnitPrice decimal.Decimal
	ImgSrc    string
}

type paymentRow struct {
	OrderID    int
	QRCode     string
	PaymentURL string
	Status     string
}

// memoryStore keeps all fake-server state behind one mutex, the same shape
// as an in-memory repository seeded for tests.
type memoryStore struct {
	mu sync.RWMutex

	users    []storeUser
	products []storeProduct
	coupons  []coupon.Coupon

	carts     map[int][]cartRow // user id -> rows
	wishlists map[int][]wishlistRow
	addresses map[int][]addressRow
	orders    map[int][]orderRow
	payments  map[int]paymentRow // order id -> payment

	nextCartItemID     int
	nextWishlistItemID int
	nextAddressID      int
	nextOrderID        int
}

func vnd(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func vndPtr(n int64) *decimal.Decimal {
	d := decimal.NewFromInt(n)
	return &d
}

func newMemoryStore() *memoryStore {
	hash, err := bcrypt.GenerateFromPassword([]byte(SeedPassword), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}

	later := time.Now().Add(30 * 24 * time.Hour)
	past := time.Now().Add(-24 * time.Hour)

	return &memoryStore{
		users: []storeUser{
			{ID: 1, Email: SeedEmail, PasswordHash: hash, FirstName: "Lan", LastName: "Nguyen", Phone: "0901234567"},
		},
		products: []storeProduct{
			{ID: 101, Title: "Ao thun basic", Brand: "CoolWear", Category: "ao", Price: vnd(100_000), Stock: 25, IsActive: true, Colors: []string{"black", "white"}, Sizes: []string{"M", "L"}, ImgSrc: "/img/p101.jpg"},
			{ID: 102, Title: "Quan jean slim", Brand: "DenimCo", Category: "quan", Price: vnd(50_000), OldPrice: vndPtr(80_000), Discount: 37, Stock: 10, IsActive: true, Colors: []string{"blue"}, Sizes: []string{"29", "30", "31"}, ImgSrc: "/img/p102.jpg"},
			{ID: 103, Title: "Giay sneaker trang", Brand: "StepUp", Category: "giay", Price: vnd(650_000), Stock: 4, IsActive: true, Colors: []string{"white"}, Sizes: []string{"40", "41", "42"}, ImgSrc: "/img/p103.jpg"},
			{ID: 104, Title: "Ao khoac gio", Brand: "CoolWear", Category: "ao", Price: vnd(320_000), Stock: 0, IsActive: true, Colors: []string{"black", "navy"}, Sizes: []string{"L", "XL"}, ImgSrc: "/img/p104.jpg"},
			{ID: 105, Title: "Tui deo cheo", Brand: "Carrier", Category: "phu-kien", Price: vnd(210_000), Stock: 7, IsActive: false, Colors: []string{"brown"}, ImgSrc: "/img/p105.jpg"},
		},
		coupons: []coupon.Coupon{
			{Code: "SALE10", Type: coupon.TypePercentage, Value: vnd(10), MinimumAmount: vnd(200_000), MaximumDiscount: vndPtr(100_000), ExpiresAt: &later},
			{Code: "GIAM50K", Type: coupon.TypeFixed, Value: vnd(50_000), MinimumAmount: vnd(500_000), ExpiresAt: &later},
			{Code: "HETHAN", Type: coupon.TypeFixed, Value: vnd(20_000), MinimumAmount: vnd(0), ExpiresAt: &past},
		},
		carts:              map[int][]cartRow{},
		wishlists:          map[int][]wishlistRow{},
		addresses:          map[int][]addressRow{},
		orders:             map[int][]orderRow{},
		payments:           map[int]paymentRow{},
		nextCartItemID:     1000,
		nextWishlistItemID: 5000,
		nextAddressID:      10,
		nextOrderID:        700,
	}
}

// product must be called with the lock held.
func (m *memoryStore) product(id int) (storeProduct, bool) {
	for _, p := range m.products {
		if p.ID == id {
			return p, true
		}
	}
	return storeProduct{}, false
}

// findCoupon must be called with the lock held.
func (m *memoryStore) findCoupon(code string) (coupon.Coupon, bool) {
	for _, c := range m.coupons {
		if c.Code == code {
			return c, true
		}
	}
	return coupon.Coupon{}, false
}

// cartSubtotal must be called with the lock held.
func (m *memoryStore) cartSubtotal(userID int) decimal.Decimal {
	total := decimal.Zero
	for _, row := range m.carts[userID] {
		p, ok := m.product(row.ProductID)
		if !ok {
			continue
		}
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(row.Quantity))))
	}
	return total
}
