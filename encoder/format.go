package encoder

import "fmt"

// FormatBitrate renders bits/s in decimal kilo/mega units, e.g. "3.19Mbps".
func FormatBitrate(bps float64) string {
	kbps := bps / 1000
	if kbps < 1000 {
		return fmt.Sprintf("%.2fKbps", kbps)
	}
	return fmt.Sprintf("%.2fMbps", kbps/1000)
}

// FormatSize renders a byte count in decimal kilo/mega units, e.g. "4.19M".
func FormatSize(bytes int64) string {
	kb := float64(bytes) / 1000
	if kb < 1000 {
		return fmt.Sprintf("%.2fK", kb)
	}
	return fmt.Sprintf("%.2fM", kb/1000)
}
