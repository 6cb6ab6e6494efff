// Synthetic data generator for the insights service.
//
// Produces chargebacks.csv (1,000 rows over the trailing 90 days, heavier
// toward recent weeks) and transactions_daily.csv (per-slice daily
// aggregates sized so problem merchants show an implied chargeback rate of
// 8-14% and normal merchants 1.5-3%). Output is deterministic for a given
// seed.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/flashcart/insights/internal/types"
)

const windowDays = 90

var (
	countries      = []string{"ID", "PH", "TH", "VN"}
	countryWeights = []float64{0.40, 0.25, 0.20, 0.15}

	categories = []string{
		"fraud",
		"product_not_received",
		"product_not_as_described",
		"duplicate_processing",
		"subscription_cancelled",
	}
	categoryWeights = []float64{0.40, 0.30, 0.15, 0.08, 0.07}
	weekendWeights  = []float64{0.58, 0.22, 0.12, 0.05, 0.03} // fraud surges on Sat/Sun

	reasonCodes = map[string][]string{
		"fraud":                    {"10.4", "10.5", "10.2"},
		"product_not_received":     {"13.1"},
		"product_not_as_described": {"13.3"},
		"duplicate_processing":     {"12.6"},
		"subscription_cancelled":   {"13.2"},
	}

	// Cards 60%, e-wallets 30%, bank transfer 10%
	paymentMethods = []string{"visa", "mastercard", "gopay", "ovo", "gcash", "truemoney", "bank_transfer"}
	paymentWeights = []float64{0.37, 0.23, 0.12, 0.10, 0.05, 0.03, 0.10}

	processors = map[string][]string{
		"visa":          {"Adyen", "Stripe", "Checkout.com"},
		"mastercard":    {"Adyen", "Stripe", "Checkout.com"},
		"gopay":         {"Midtrans"},
		"ovo":           {"Midtrans"},
		"gcash":         {"PayMaya"},
		"truemoney":     {"Omise"},
		"bank_transfer": {"Xendit"},
	}

	merchantCategories = []string{
		"electronics", "accessories", "gaming", "mobile_phones",
		"fashion", "health_beauty", "home_appliances",
	}

	// M001-M008 are the problem merchants
	merchantNames = []string{
		"TechZone PH", "GadgetHub ID", "GamersParadise", "MobileKing TH",
		"AccessoryWorld", "ElectroShop VN", "QuickGadgets", "PhoneMax ID",
		"DigiStore PH", "GamingGear ID", "TechMart VN", "CoolPhone TH",
		"AccessPro ID", "ElectraBuy PH", "SmartGadgets VN", "MobileHub TH",
		"GearUp PH", "TechPulse ID", "GameStop VN", "PhoneZone TH",
		"AccessHub PH", "ElectroMall ID", "SmartStore VN", "MobilePro TH",
		"GadgetPro ID", "TechGo PH", "GameWorld VN", "PhoneMart TH",
		"AccessZone ID", "ElectroGo PH", "SmartHub TH", "MobileZone VN",
		"GadgetStore ID", "TechHub PH", "GameZone VN", "PhoneHub TH",
		"AccessMart PH", "ElectroZone ID", "SmartMart VN", "MobileStore TH",
		"GadgetMall PH", "TechStore ID", "GameHub VN", "PhoneStore TH",
		"AccessStore ID", "ElectroHub PH", "SmartZone VN", "MobileGear TH",
		"GadgetZone PH", "TechMall ID", "GameMart VN", "PhonePro TH",
		"AccessGear ID", "ElectroStore PH", "SmartGear VN",
	}

	products = map[string][]string{
		"electronics": {
			"Samsung Galaxy S24", "Xiaomi 14 Pro", "OPPO Reno11 5G",
			"Sony WH-1000XM5", "iPad Air M2", "Lenovo Tab P12",
			`LG 55" OLED TV`, "Dell Inspiron 15",
		},
		"accessories": {
			"USB-C 65W Fast Charger", "Screen Protector 3-Pack",
			"Slim Phone Case", "TWS Bluetooth Earbuds",
			`Laptop Sleeve 15"`, "Smart Watch Band Set",
		},
		"gaming": {
			"PlayStation Store $50 Gift Card", "Xbox Game Pass 3-Month",
			"Razer DeathAdder Mouse", "SteelSeries Arctis Headset",
			"Nintendo Switch Carry Case",
		},
		"mobile_phones": {
			"iPhone 15 Pro", "Samsung Galaxy A54",
			"Xiaomi Redmi Note 13", "OPPO A78 5G", "Vivo V29",
		},
		"fashion": {
			"Premium Cotton T-Shirt 3-Pack", "Casual Slip-On Sneakers",
			"UV400 Polarised Sunglasses", "Genuine Leather Wallet",
		},
		"health_beauty": {
			"Vitamin C Brightening Serum", "Gentle Foam Cleanser Set",
			"Whey Protein Powder 1 kg", "Aromatherapy Essential Oil Kit",
		},
		"home_appliances": {
			"Smart WiFi Plug 4-Pack", "Compact Air Purifier H13",
			"Rice Cooker 1.8 L", "Touch-Dimmer LED Desk Lamp",
		},
	}
)

type merchant struct {
	ID       string
	Name     string
	Category string
}

const (
	fraudSpikeMerchant = "M003" // GamersParadise, heavy fraud spike in last 10 days
	pnrSteadyMerchant  = "M006" // ElectroShop VN, persistent product_not_received
	problemMerchants   = 8      // M001-M008
)

type generator struct {
	rng       *rand.Rand
	today     time.Time
	merchants []merchant
}

func newGenerator(seed int64, today time.Time) *generator {
	rng := rand.New(rand.NewSource(seed))
	merchants := make([]merchant, len(merchantNames))
	for i, name := range merchantNames {
		merchants[i] = merchant{
			ID:       fmt.Sprintf("M%03d", i+1),
			Name:     name,
			Category: merchantCategories[rng.Intn(len(merchantCategories))],
		}
	}
	return &generator{rng: rng, today: types.Midnight(today), merchants: merchants}
}

// weighted picks an index from weights proportional to their mass.
func (g *generator) weighted(weights []float64) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	r := g.rng.Float64() * total
	for i, w := range weights {
		r -= w
		if r < 0 {
			return i
		}
	}
	return len(weights) - 1
}

func (g *generator) choice(values []string) string {
	return values[g.rng.Intn(len(values))]
}

// newID draws UUID bytes from the seeded source so runs are reproducible.
func (g *generator) newID() string {
	id, err := uuid.NewRandomFromReader(g.rng)
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// pickCategory applies the built-in patterns: a fraud spike on M003 in the
// last 10 days, steady product_not_received on M006, and a weekend fraud
// surge everywhere else.
func (g *generator) pickCategory(merchantID string, d time.Time) string {
	daysAgo := int(g.today.Sub(d).Hours() / 24)
	if merchantID == fraudSpikeMerchant && daysAgo <= 10 {
		return categories[g.weighted([]float64{0.85, 0.05, 0.05, 0.03, 0.02})]
	}
	if merchantID == pnrSteadyMerchant {
		return categories[g.weighted([]float64{0.05, 0.88, 0.04, 0.02, 0.01})]
	}
	if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return categories[g.weighted(weekendWeights)]
	}
	return categories[g.weighted(categoryWeights)]
}

// sampleAmount draws from the dispute amount distribution: 5% high outliers
// ($200-$450), 7% low tail ($8-$22), 88% lognormal bulk clamped to $20-$200.
func (g *generator) sampleAmount() float64 {
	r := g.rng.Float64()
	switch {
	case r < 0.05:
		return round2(200.0 + g.rng.Float64()*250.0)
	case r < 0.12:
		return round2(8.0 + g.rng.Float64()*14.0)
	default:
		v := math.Exp(g.rng.NormFloat64()*0.55 + 3.70)
		return round2(math.Min(math.Max(v, 20.0), 200.0))
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

type chargebackRow struct {
	ID, Timestamp, MerchantID, MerchantName, MerchantCategory string
	ProductName, Country, PaymentMethod, Processor            string
	ReasonCode, Category                                      string
	Amount                                                    float64
	date                                                      time.Time
}

// generateChargebacks builds the full row set, split 15/30/55 across the
// three 30-day periods so recent weeks carry more volume.
func (g *generator) generateChargebacks(total int) []chargebackRow {
	start := g.today.AddDate(0, 0, -(windowDays - 1))

	type period struct {
		from, to time.Time
		count    int
	}
	counts := []int{int(float64(total) * 0.15), int(float64(total) * 0.30)}
	counts = append(counts, total-counts[0]-counts[1])
	periods := []period{
		{start, start.AddDate(0, 0, 29), counts[0]},
		{start.AddDate(0, 0, 30), start.AddDate(0, 0, 59), counts[1]},
		{start.AddDate(0, 0, 60), g.today, counts[2]},
	}

	var rows []chargebackRow
	for _, p := range periods {
		span := int(p.to.Sub(p.from).Hours()/24) + 1
		for i := 0; i < p.count; i++ {
			// 70% of chargebacks land on the problem merchants
			var m merchant
			if g.rng.Float64() < 0.70 {
				m = g.merchants[g.rng.Intn(problemMerchants)]
			} else {
				m = g.merchants[problemMerchants+g.rng.Intn(len(g.merchants)-problemMerchants)]
			}

			d := p.from.AddDate(0, 0, g.rng.Intn(span))
			cat := g.pickCategory(m.ID, d)
			pm := paymentMethods[g.weighted(paymentWeights)]

			catalogue, ok := products[m.Category]
			if !ok {
				catalogue = products["electronics"]
			}

			ts := time.Date(d.Year(), d.Month(), d.Day(),
				g.rng.Intn(24), g.rng.Intn(60), g.rng.Intn(60), 0, time.UTC)

			rows = append(rows, chargebackRow{
				ID:               g.newID(),
				Timestamp:        ts.Format("2006-01-02T15:04:05"),
				MerchantID:       m.ID,
				MerchantName:     m.Name,
				MerchantCategory: m.Category,
				ProductName:      g.choice(catalogue),
				Country:          countries[g.weighted(countryWeights)],
				PaymentMethod:    pm,
				Processor:        g.choice(processors[pm]),
				ReasonCode:       g.choice(reasonCodes[cat]),
				Category:         cat,
				Amount:           g.sampleAmount(),
				date:             d,
			})
		}
	}
	return rows
}

type sliceKey struct {
	Date, MerchantID, Country, PaymentMethod, Processor string
}

// generateTransactions derives daily aggregates from the chargeback rows so
// the implied rate lands at 8-14% for problem merchants and 1.5-3% for the
// rest.
func (g *generator) generateTransactions(chargebacks []chargebackRow) [][]string {
	counts := make(map[sliceKey]int)
	for _, r := range chargebacks {
		key := sliceKey{
			Date:          types.FormatDate(r.date),
			MerchantID:    r.MerchantID,
			Country:       r.Country,
			PaymentMethod: r.PaymentMethod,
			Processor:     r.Processor,
		}
		counts[key]++
	}

	keys := make([]sliceKey, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.MerchantID != b.MerchantID {
			return a.MerchantID < b.MerchantID
		}
		if a.Country != b.Country {
			return a.Country < b.Country
		}
		if a.PaymentMethod != b.PaymentMethod {
			return a.PaymentMethod < b.PaymentMethod
		}
		return a.Processor < b.Processor
	})

	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		cbCount := counts[k]

		isProblem := k.MerchantID <= fmt.Sprintf("M%03d", problemMerchants)
		var rate float64
		if isProblem {
			rate = 0.08 + g.rng.Float64()*0.06
		} else {
			rate = 0.015 + g.rng.Float64()*0.015
		}

		txCount := int(float64(cbCount) / rate)
		if txCount < cbCount {
			txCount = cbCount
		}
		avgOrder := 40.0 + g.rng.Float64()*80.0

		rows = append(rows, []string{
			k.Date,
			k.MerchantID,
			k.Country,
			k.PaymentMethod,
			k.Processor,
			fmt.Sprintf("%d", txCount),
			fmt.Sprintf("%.2f", float64(txCount)*avgOrder),
		})
	}
	return rows
}

func writeCSVFile(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func main() {
	var (
		outDir = flag.String("out", "./data", "output directory")
		seed   = flag.Int64("seed", 42, "random seed")
		total  = flag.Int("count", 1000, "number of chargeback records")
	)
	flag.Parse()

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "create output dir: %v\n", err)
		os.Exit(1)
	}

	g := newGenerator(*seed, time.Now())
	chargebacks := g.generateChargebacks(*total)

	cbRows := make([][]string, 0, len(chargebacks))
	for _, r := range chargebacks {
		cbRows = append(cbRows, []string{
			r.ID, r.Timestamp, r.MerchantID, r.MerchantName, r.MerchantCategory,
			r.ProductName, fmt.Sprintf("%.2f", r.Amount), "USD", r.Country,
			r.PaymentMethod, r.Processor, r.ReasonCode, r.Category,
		})
	}
	cbPath := filepath.Join(*outDir, "chargebacks.csv")
	if err := writeCSVFile(cbPath, []string{
		"chargeback_id", "chargeback_date", "merchant_id", "merchant_name",
		"merchant_category", "product_name", "amount", "currency", "country",
		"payment_method", "processor", "reason_code", "category",
	}, cbRows); err != nil {
		fmt.Fprintf(os.Stderr, "write %s: %v\n", cbPath, err)
		os.Exit(1)
	}
	fmt.Printf("chargebacks.csv        %d rows -> %s\n", len(cbRows), cbPath)

	txRows := g.generateTransactions(chargebacks)
	txPath := filepath.Join(*outDir, "transactions_daily.csv")
	if err := writeCSVFile(txPath, []string{
		"date", "merchant_id", "country", "payment_method", "processor",
		"transactions_count", "transactions_amount",
	}, txRows); err != nil {
		fmt.Fprintf(os.Stderr, "write %s: %v\n", txPath, err)
		os.Exit(1)
	}
	fmt.Printf("transactions_daily.csv %d rows -> %s\n", len(txRows), txPath)
}
