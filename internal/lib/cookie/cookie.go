// Package cookie выставляет и очищает cookie сессии.
package cookie

import "net/http"

// Name имя cookie с сессионным токеном.
const Name = "token"

// Set записывает токен в сессионную cookie (без Max-Age): HttpOnly, SameSite=Strict.
// secure включает флаг Secure (production).
func Set(w http.ResponseWriter, token string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     Name,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// Clear удаляет cookie сессии у клиента.
func Clear(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// Token возвращает значение cookie сессии из запроса.
func Token(r *http.Request) string {
	c, err := r.Cookie(Name)
	if err != nil {
		return ""
	}
	return c.Value
}
