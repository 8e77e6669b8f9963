package common

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// GenerateUUID 生成 UUID
func GenerateUUID() string {
	return uuid.New().String()
}

// HashKey 計算字串的 sha256 十六進位摘要，用於快取鍵與 product key
func HashKey(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// ProductKey 推導使用者偏好的鍵：有條碼用條碼，否則雜湊小寫的 brand:name
func ProductKey(barcode, brand, name string) string {
	if barcode != "" {
		return "barcode:" + barcode
	}
	return HashKey(strings.ToLower(brand) + ":" + strings.ToLower(name))
}

// WriteErrorResponse 寫入錯誤響應
func WriteErrorResponse(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}
