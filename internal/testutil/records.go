package testutil

import (
	"fmt"

	"github.com/roach88/placer/internal/value"
)

// IPSpellingRecords builds n records in which the IP address appears under
// three spellings ("IP", "ip_address", "IpAddress") in disjoint thirds of the
// first 95% of records. Every record carries a unique username.
func IPSpellingRecords(n int) []value.Object {
	spellings := []string{"IP", "ip_address", "IpAddress"}
	withIP := n * 95 / 100

	recs := make([]value.Object, n)
	for i := 0; i < n; i++ {
		rec := value.Object{"username": value.String(fmt.Sprintf("user_%d", i))}
		if i < withIP {
			field := spellings[i*len(spellings)/withIP]
			rec[field] = value.String(fmt.Sprintf("10.%d.%d.%d", i%7, i/256, i%256))
		}
		recs[i] = rec
	}
	return recs
}

// NestedSparseRecords builds n records where "device_info" is an object in
// every tenth record. Every record carries a username.
func NestedSparseRecords(n int) []value.Object {
	recs := make([]value.Object, n)
	for i := 0; i < n; i++ {
		rec := value.Object{"username": value.String(fmt.Sprintf("user_%d", i%50))}
		if i%10 == 0 {
			rec["device_info"] = value.Object{
				"type": value.String("mobile"),
				"os":   value.String("linux"),
			}
		}
		recs[i] = rec
	}
	return recs
}
