package api

const (
	// HeaderGatewaySignature содержит base64 подпись строки method+path от gateway
	HeaderGatewaySignature = "x-gateway-signature"
	// HeaderUserEmail содержит email пользователя для /reset-password
	HeaderUserEmail = "x-user-email"
	// HeaderRequestID возвращается в каждом ответе для корреляции логов
	HeaderRequestID = "X-Request-ID"
)
