// Package internaldefs holds the metric families, histogram names and bucket
// bounds shared by the Prometheus and OTel exporters.
//
// Engine counters are grouped into labeled families (logins by result,
// rejections by reason, validations by result) so both exporters publish the
// same names and label sets.
package internaldefs
