package card

import (
	"encoding/base64"
	"strings"
)

// Decode 解码闸机上送的二维码内容
// 闸机传输时会把URL安全字符表和空格混进来，这里统一转换回标准字符表，
// 并根据长度补齐缺失的padding（余2补"=="，余3补"="）后按标准base64解码
func Decode(value string) ([]byte, error) {
	value = strings.ReplaceAll(value, " ", "+")
	value = strings.ReplaceAll(value, "-", "+")
	value = strings.ReplaceAll(value, "_", "/")

	switch len(value) % 4 {
	case 2:
		value += "=="
	case 3:
		value += "="
	}

	return base64.StdEncoding.DecodeString(value)
}

// DecodeString 解码并返回字符串
func DecodeString(value string) (string, error) {
	b, err := Decode(value)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
