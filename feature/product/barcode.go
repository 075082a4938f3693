package product

// Barcode is a GTIN family code (EAN-8, UPC-A, EAN-13, GTIN-14) as sent by the server.
type Barcode string

func (b Barcode) String() string {
	return string(b)
}

// Valid verifies the length and the trailing check digit.
func (b Barcode) Valid() bool {
	switch len(b) {
	case 8, 12, 13, 14:
	default:
		return false
	}
	sum := 0
	// Weights alternate 3,1,3,... from the digit left of the check digit.
	for i := len(b) - 2; i >= 0; i-- {
		c := b[i]
		if c < '0' || c > '9' {
			return false
		}
		d := int(c - '0')
		if (len(b)-2-i)%2 == 0 {
			d *= 3
		}
		sum += d
	}
	last := b[len(b)-1]
	if last < '0' || last > '9' {
		return false
	}
	return (10-sum%10)%10 == int(last-'0')
}
