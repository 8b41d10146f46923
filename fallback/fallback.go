// Package fallback holds the static product dataset served when scraping is
// unavailable or returns too little.
package fallback

import "github.com/aluiziolira/go-tech-catalog/models"

var dataset = []models.Product{
	{
		ID:          1,
		Title:       "iPhone 15 Pro Max",
		Description: "Latest flagship smartphone with titanium design, A17 Pro chip, and advanced camera system.",
		Price:       "AED 1,59,900",
		Category:    "smartphone",
		Link:        "https://www.apple.com/iphone-15-pro/",
		Source:      "Apple Store",
	},
	{
		ID:          2,
		Title:       "Samsung Galaxy S24 Ultra",
		Description: "Premium Android smartphone with S Pen, 200MP camera, and AI-powered features.",
		Price:       "AED 1,29,999",
		Category:    "smartphone",
		Link:        "https://www.samsung.com/in/smartphones/galaxy-s24-ultra/",
		Source:      "Samsung",
	},
	{
		ID:          3,
		Title:       `MacBook Pro 16" M3 Max`,
		Description: "Professional laptop with M3 Max chip, 18-hour battery life, and stunning Liquid Retina XDR display.",
		Price:       "AED 3,99,900",
		Category:    "laptop",
		Link:        "https://www.apple.com/macbook-pro/",
		Source:      "Apple Store",
	},
	{
		ID:          4,
		Title:       "Dell XPS 13 Plus",
		Description: "Ultrabook with 13th Gen Intel Core processors, premium build quality, and edge-to-edge display.",
		Price:       "AED 1,54,990",
		Category:    "laptop",
		Link:        "https://www.dell.com/en-in/shop/laptops/xps-13-plus/spd/xps-13-9320-laptop",
		Source:      "Dell",
	},
	{
		ID:          5,
		Title:       "Sony WH-1000XM5",
		Description: "Industry-leading noise canceling headphones with 30-hour battery life and crystal-clear calls.",
		Price:       "AED 29,990",
		Category:    "headphones",
		Link:        "https://www.sony.co.in/headphones/wh-1000xm5",
		Source:      "Sony",
	},
	{
		ID:          6,
		Title:       "AirPods Pro (2nd Gen)",
		Description: "Wireless earbuds with active noise cancellation, spatial audio, and adaptive transparency.",
		Price:       "AED 26,900",
		Category:    "headphones",
		Link:        "https://www.apple.com/airpods-pro/",
		Source:      "Apple Store",
	},
	{
		ID:          7,
		Title:       "NVIDIA RTX 4090",
		Description: "Ultimate gaming graphics card with 24GB GDDR6X memory and ray tracing capabilities.",
		Price:       "AED 1,54,000",
		Category:    "gaming",
		Link:        "https://www.nvidia.com/en-in/geforce/graphics-cards/40-series/rtx-4090/",
		Source:      "NVIDIA",
	},
	{
		ID:          8,
		Title:       "PlayStation 5",
		Description: "Next-gen gaming console with ultra-high speed SSD, ray tracing, and 4K gaming support.",
		Price:       "AED 54,990",
		Category:    "gaming",
		Link:        "https://www.playstation.com/en-in/ps5/",
		Source:      "PlayStation",
	},
	{
		ID:          9,
		Title:       `iPad Pro 12.9" M2`,
		Description: "Professional tablet with M2 chip, Liquid Retina XDR display, and Apple Pencil support.",
		Price:       "AED 1,12,900",
		Category:    "accessories",
		Link:        "https://www.apple.com/ipad-pro/",
		Source:      "Apple Store",
	},
	{
		ID:          10,
		Title:       "Microsoft Surface Pro 9",
		Description: "2-in-1 laptop tablet with 12th Gen Intel Core processors and all-day battery life.",
		Price:       "AED 1,13,999",
		Category:    "laptop",
		Link:        "https://www.microsoft.com/en-in/surface/devices/surface-pro-9",
		Source:      "Microsoft",
	},
	{
		ID:          11,
		Title:       "Google Pixel 8 Pro",
		Description: "AI-powered smartphone with advanced computational photography and 7 years of updates.",
		Price:       "AED 1,06,999",
		Category:    "smartphone",
		Link:        "https://store.google.com/product/pixel_8_pro",
		Source:      "Google Store",
	},
	{
		ID:          12,
		Title:       "OnePlus 12",
		Description: "Flagship killer with Snapdragon 8 Gen 3, 120W fast charging, and Hasselblad camera.",
		Price:       "AED 64,999",
		Category:    "smartphone",
		Link:        "https://www.oneplus.in/12",
		Source:      "OnePlus",
	},
	{
		ID:          13,
		Title:       "ASUS ROG Zephyrus G16",
		Description: "Gaming laptop with RTX 4070, AMD Ryzen 9 processor, and 240Hz display.",
		Price:       "AED 1,89,990",
		Category:    "gaming",
		Link:        "https://rog.asus.com/laptops/13-14-inch/rog-zephyrus-g16-2024/",
		Source:      "ASUS",
	},
	{
		ID:          14,
		Title:       "Bose QuietComfort 45",
		Description: "Premium noise-cancelling headphones with 24-hour battery and balanced sound signature.",
		Price:       "AED 32,900",
		Category:    "headphones",
		Link:        "https://www.bose.in/products/headphones/over-ear-headphones/quietcomfort-45-headphones",
		Source:      "Bose",
	},
	{
		ID:          15,
		Title:       "Logitech MX Master 3S",
		Description: "Advanced wireless mouse with ultra-precise scroll wheel and multi-device connectivity.",
		Price:       "AED 8,995",
		Category:    "accessories",
		Link:        "https://www.logitech.com/en-in/products/mice/mx-master-3s.html",
		Source:      "Logitech",
	},
	{
		ID:          16,
		Title:       `Samsung 32" Odyssey G7`,
		Description: "1000R curved gaming monitor with 240Hz refresh rate and 1ms response time.",
		Price:       "AED 54,999",
		Category:    "gaming",
		Link:        "https://www.samsung.com/in/monitors/gaming/odyssey-g7-32-inch-lc32g75tqswxxl/",
		Source:      "Samsung",
	},
	{
		ID:          17,
		Title:       "Apple Magic Keyboard",
		Description: "Wireless keyboard with scissor mechanism, numeric keypad, and rechargeable battery.",
		Price:       "AED 19,900",
		Category:    "accessories",
		Link:        "https://www.apple.com/in/shop/product/MK2C3HN/A/magic-keyboard-with-numeric-keypad",
		Source:      "Apple Store",
	},
	{
		ID:          18,
		Title:       "ThinkPad X1 Carbon Gen 11",
		Description: "Business ultrabook with 13th Gen Intel Core, carbon fiber construction, and military-grade durability.",
		Price:       "AED 1,89,000",
		Category:    "laptop",
		Link:        "https://www.lenovo.com/in/en/laptops/thinkpad/thinkpad-x1/X1-Carbon-Gen-11/p/21HMCTO1WWIN",
		Source:      "Lenovo",
	},
	{
		ID:          19,
		Title:       "Razer DeathAdder V3",
		Description: "Ergonomic gaming mouse with 30K DPI sensor, 90-hour battery life, and ultra-lightweight design.",
		Price:       "AED 8,999",
		Category:    "gaming",
		Link:        "https://www.razer.com/gaming-mice/razer-deathadder-v3",
		Source:      "Razer",
	},
	{
		ID:          20,
		Title:       "JBL Flip 6",
		Description: "Portable Bluetooth speaker with powerful sound, 12-hour playtime, and IP67 waterproof rating.",
		Price:       "AED 11,999",
		Category:    "accessories",
		Link:        "https://in.jbl.com/bluetooth-speakers/JBL+FLIP+6.html",
		Source:      "JBL",
	},
}

// Products returns a fresh copy of the fallback dataset in declaration order.
func Products() []models.Product {
	out := make([]models.Product, len(dataset))
	copy(out, dataset)
	return out
}

// Len reports the size of the fallback dataset.
func Len() int {
	return len(dataset)
}
