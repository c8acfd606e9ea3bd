package models

// PrintSize is one of the fixed print dimensions offered by the shop.
type PrintSize string

const (
	Size3x5  PrintSize = "3.5X5"
	Size4x6  PrintSize = "4X6"
	Size5x7  PrintSize = "5X7"
	Size8x10 PrintSize = "8X10"
	Size4x4  PrintSize = "4X4"
	Size8x8  PrintSize = "8X8"
)

var PrintSizes = []PrintSize{Size3x5, Size4x6, Size5x7, Size8x10, Size4x4, Size8x8}

func ParsePrintSize(s string) (PrintSize, bool) {
	for _, size := range PrintSizes {
		if string(size) == s {
			return size, true
		}
	}
	return "", false
}

type PaperType string

const (
	PaperLuster PaperType = "Luster"
	PaperGlossy PaperType = "Glossy"
)

var PaperTypes = []PaperType{PaperLuster, PaperGlossy}

func ParsePaperType(s string) (PaperType, bool) {
	for _, paper := range PaperTypes {
		if string(paper) == s {
			return paper, true
		}
	}
	return "", false
}

// Quantities is the fixed enumeration of per-image quantities a shopper can pick.
var Quantities = []int{1, 5, 10, 20, 30, 40, 50}

func ValidQuantity(q int) bool {
	for _, allowed := range Quantities {
		if q == allowed {
			return true
		}
	}
	return false
}
