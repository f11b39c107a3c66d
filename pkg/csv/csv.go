package csv

import (
	"bytes"
	"fmt"
)

type Record interface {
	Issuer() string
	Product() string
	Last4() string
	Amount() float64
}

type FilterFunc[T Record] func(T) bool

func Create[T Record](records []T, filter FilterFunc[T]) []byte {
	var buf bytes.Buffer
	buf.WriteString("Issuer,Product,Last4,Balance\n")
	for _, r := range records {
		if filter == nil || filter(r) {
			buf.WriteString(fmt.Sprintf("%s,%s,%s,%.2f\n",
				r.Issuer(),
				r.Product(),
				r.Last4(),
				r.Amount()))
		}
	}
	return buf.Bytes()
}
