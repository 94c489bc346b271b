// Package validation holds the server-side counterparts of the form
// validators the web client runs before submitting: email shape, password
// strength, CPF checksum and card-number Luhn check.
package validation

import (
	"regexp"
	"strings"
)

var emailRe = regexp.MustCompile(`.+@.+\..+`)

// common passwords rejected outright at signup.
var senhasComuns = map[string]bool{
	"12345678": true,
	"password": true,
	"senha123": true,
	"admin123": true,
}

// ValidEmail reports whether the address has the minimal user@host.tld shape.
func ValidEmail(email string) bool {
	return emailRe.MatchString(strings.TrimSpace(email))
}

// ValidarSenha checks signup password strength: at least 8 characters,
// containing upper case, lower case and a digit, and not on the common
// password list. It returns an empty string when the password is
// acceptable, otherwise the client-facing message.
func ValidarSenha(senha string) string {
	if senha == "" {
		return "Crie uma senha."
	}
	if len(senha) < 8 {
		return "A senha precisa ter pelo menos 8 caracteres."
	}
	var upper, lower, digit bool
	for _, r := range senha {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return "A senha deve conter letras maiúsculas, minúsculas e números."
	}
	if senhasComuns[strings.ToLower(senha)] {
		return "Essa senha é muito comum. Escolha outra."
	}
	return ""
}

// ForcaSenha scores a password as "fraca", "media" or "forte", mirroring
// the strength meter the signup form shows.
func ForcaSenha(senha string) string {
	if len(senha) < 8 {
		return "fraca"
	}
	pontos := 0
	if strings.IndexFunc(senha, func(r rune) bool { return r >= 'A' && r <= 'Z' }) >= 0 {
		pontos++
	}
	if strings.IndexFunc(senha, func(r rune) bool { return r >= 'a' && r <= 'z' }) >= 0 {
		pontos++
	}
	if strings.IndexFunc(senha, func(r rune) bool { return r >= '0' && r <= '9' }) >= 0 {
		pontos++
	}
	if strings.IndexFunc(senha, func(r rune) bool {
		return !(r >= 'A' && r <= 'Z') && !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9')
	}) >= 0 {
		pontos++
	}
	if len(senha) >= 12 {
		pontos++
	}
	switch {
	case pontos <= 2:
		return "fraca"
	case pontos == 3:
		return "media"
	}
	return "forte"
}

// ValidCPF verifies the two check digits of a Brazilian CPF. Formatting
// characters (dots, dash) are ignored. Sequences of a single repeated
// digit are invalid even though their checksum passes.
func ValidCPF(cpf string) bool {
	digits := make([]int, 0, 11)
	for _, r := range cpf {
		if r >= '0' && r <= '9' {
			digits = append(digits, int(r-'0'))
		} else if r != '.' && r != '-' && r != ' ' {
			return false
		}
	}
	if len(digits) != 11 {
		return false
	}
	same := true
	for _, d := range digits[1:] {
		if d != digits[0] {
			same = false
			break
		}
	}
	if same {
		return false
	}
	for _, pos := range []int{9, 10} {
		sum := 0
		for i := 0; i < pos; i++ {
			sum += digits[i] * (pos + 1 - i)
		}
		check := (sum * 10) % 11
		if check == 10 {
			check = 0
		}
		if check != digits[pos] {
			return false
		}
	}
	return true
}

// ValidLuhn verifies a card number with the Luhn algorithm. Spaces are
// ignored; anything else non-numeric fails.
func ValidLuhn(number string) bool {
	sum := 0
	alt := false
	seen := 0
	for i := len(number) - 1; i >= 0; i-- {
		r := number[i]
		if r == ' ' {
			continue
		}
		if r < '0' || r > '9' {
			return false
		}
		d := int(r - '0')
		if alt {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		alt = !alt
		seen++
	}
	return seen >= 12 && sum%10 == 0
}
