package auth

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"gopkg.in/yaml.v3"

	"risk-insight/config"
	"risk-insight/utils"
)

type UsersFile struct {
	Users map[string]UserInfo `yaml:"users"`
}

type UserInfo struct {
	Hash  string `yaml:"hash"`
	Salt  string `yaml:"salt"`
	Admin bool   `yaml:"admin"`
}

func LoadUsers(file string) (*UsersFile, error) {
	var uf UsersFile
	root := utils.GetProjectRoot()
	cfgPath := filepath.Join(root, file)
	data, err := os.ReadFile(cfgPath)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, &uf); err != nil {
		return nil, err
	}
	if uf.Users == nil {
		uf.Users = map[string]UserInfo{}
	}
	return &uf, nil
}

// VerifyUser valide un couple user/password contre le backend
// configuré (file, mysql, postgres ou sqlite). Retourne le flag admin.
func VerifyUser(cfg *config.Config, users *UsersFile, username, password string) (bool, error) {
	switch cfg.Auth.UserBackend {
	case "", "file":
		u, ok := users.Users[username]
		if !ok {
			return false, errors.New("unknown user")
		}
		passHash, err := ApplyHashMacro(cfg.Auth.HashMacro, password, username, u.Salt, cfg.Auth.Salt)
		if err != nil {
			return false, err
		}
		if passHash != u.Hash {
			return false, errors.New("wrong password")
		}
		return u.Admin, nil
	case "mysql", "postgres", "sqlite3":
		db, err := sql.Open(cfg.Auth.UserBackend, cfg.Auth.DBDSN)
		if err != nil {
			return false, err
		}
		defer db.Close()
		hash, salt, isAdmin, err := GetUserFromDB(db, cfg.Auth.UserRequest, username, password)
		if err != nil {
			return false, errors.New("unknown user")
		}
		// DBPassHash vrai = la requête SQL ne vérifie pas le mot de
		// passe, la comparaison se fait ici.
		if cfg.Auth.DBPassHash {
			passHash, err := ApplyHashMacro(cfg.Auth.DBHashMacro, password, username, salt, cfg.Auth.Salt)
			if err != nil {
				return false, err
			}
			if passHash != hash {
				return false, errors.New("wrong password")
			}
		}
		return isAdmin, nil
	default:
		return false, errors.New("unsupported user backend: " + cfg.Auth.UserBackend)
	}
}

// Ex: "SELECT hash, salt, is_admin FROM users WHERE name = ? AND password = ?"
func GetUserFromDB(db *sql.DB, query, username string, password string) (hash, salt string, isAdmin bool, err error) {
	row := db.QueryRow(query, username, password)
	var adminVal interface{}
	err = row.Scan(&hash, &salt, &adminVal)
	if err != nil {
		return "", "", false, err
	}
	isAdmin = dbToBool(adminVal)
	return
}

func dbToBool(v interface{}) bool {
	switch val := v.(type) {
	case bool:
		return val
	case int64:
		return val != 0
	case int:
		return val != 0
	case []uint8:
		s := string(val)
		return s == "1" || s == "t" || s == "T" || s == "true" || s == "TRUE"
	}
	return false
}

func ApplyHashMacro(macro, password, user, userSalt, globalSalt string) (string, error) {
	replace := func(s string) string {
		s = strings.ReplaceAll(s, "{password}", password)
		s = strings.ReplaceAll(s, "{user}", user)
		s = strings.ReplaceAll(s, "{salt}", userSalt)
		s = strings.ReplaceAll(s, "{globalsalt}", globalSalt)
		return s
	}
	macro = strings.TrimSpace(macro)
	if strings.HasPrefix(macro, "{sha256}") {
		plain := extractBetween(macro, "{sha256}(", ")")
		return sha256Hash(replace(plain)), nil
	}
	if strings.HasPrefix(macro, "{sha1}") {
		plain := extractBetween(macro, "{sha1}(", ")")
		return sha1Hash(replace(plain)), nil
	}
	if strings.HasPrefix(macro, "{md5}") {
		plain := extractBetween(macro, "{md5}(", ")")
		return md5Hash(replace(plain)), nil
	}
	if strings.HasPrefix(macro, "{clear}") {
		plain := extractBetween(macro, "{clear}(", ")")
		return replace(plain), nil
	}
	return "", errors.New("unsupported hash macro")
}

func extractBetween(str, start, end string) string {
	a := strings.Index(str, start)
	if a == -1 {
		return ""
	}
	a += len(start)
	b := strings.LastIndex(str, end)
	if b == -1 || b <= a {
		return ""
	}
	return str[a:b]
}

func sha256Hash(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}
func sha1Hash(s string) string {
	h := sha1.Sum([]byte(s))
	return hex.EncodeToString(h[:])
}
func md5Hash(s string) string {
	h := md5.Sum([]byte(s))
	return hex.EncodeToString(h[:])
}
