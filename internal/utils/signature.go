package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/Dan9191/cashflow-service/internal/models"
)

// GenerateHMAC signs the terms of an installment group so a confirmed
// obligation can be checked for tampering later.
func GenerateHMAC(g models.InstallmentGroup, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	data := fmt.Sprintf("%d|%s|%s|%d|%s",
		g.ID, g.TotalValue.StringFixed(2), g.InstallmentValue.StringFixed(2),
		g.TotalInstallments, g.StartDate.Format("2006-01-02"))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}

// VerifyHMAC reports whether the group's stored signature matches its terms
func VerifyHMAC(g models.InstallmentGroup, secret string) bool {
	want := GenerateHMAC(g, secret)
	return hmac.Equal([]byte(want), []byte(g.Signature))
}
