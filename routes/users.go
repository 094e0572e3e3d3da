package routes

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"flota-municipal-api/models"
	"flota-municipal-api/pkg"
)

type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Active   *bool  `json:"active"`
}

type UpdateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Active   bool   `json:"active"`
}

const userColumns = "id, username, password, role, active, created_at, updated_at, last_login_at"

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (models.User, error) {
	var user models.User
	var lastLogin sql.NullString
	err := row.Scan(&user.ID, &user.Username, &user.Password, &user.Role, &user.Active, &user.CreatedAt, &user.UpdatedAt, &lastLogin)
	user.LastLoginAt = lastLogin.String
	return user, err
}

func validRole(role string) bool {
	return role == models.RoleAdmin || role == models.RoleOperador
}

// GetUsers obtiene todos los usuarios
func (h *Handler) GetUsers(c *fiber.Ctx) error {
	rows, err := h.DB.Query("SELECT " + userColumns + " FROM users ORDER BY id")
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error al obtener los usuarios",
		})
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
				"error": "Error al obtener los usuarios",
			})
		}
		users = append(users, user)
	}

	return c.JSON(users)
}

func (h *Handler) findUser(id string) (models.User, error) {
	return scanUser(h.DB.QueryRow("SELECT "+userColumns+" FROM users WHERE id = ?", id))
}

// GetUser obtiene un usuario
func (h *Handler) GetUser(c *fiber.Ctx) error {
	user, err := h.findUser(c.Params("user_id"))
	if errors.Is(err, sql.ErrNoRows) {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{
			"error": "Usuario no encontrado",
		})
	}
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error al obtener el usuario",
		})
	}
	return c.JSON(user)
}

// GetCurrentUser obtiene el usuario autenticado
func (h *Handler) GetCurrentUser(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	user, err := h.findUser(userID)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error al obtener el usuario",
		})
	}
	return c.JSON(user)
}

// CreateUser crea un usuario
func (h *Handler) CreateUser(c *fiber.Ctx) error {
	var user CreateUserRequest
	if err := c.BodyParser(&user); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "Error al crear el usuario",
		})
	}
	if user.Username == "" || user.Password == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "El nombre de usuario y la contraseña son obligatorios",
		})
	}
	if user.Role == "" {
		user.Role = models.RoleOperador
	}
	if !validRole(user.Role) {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "Rol inválido, debe ser 'admin' u 'operador'",
		})
	}
	active := user.Active == nil || *user.Active

	// Comprobar si el usuario ya existe
	var count int
	err := h.DB.QueryRow("SELECT COUNT(*) FROM users WHERE username = ?", user.Username).Scan(&count)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error al comprobar si el usuario existe",
		})
	}
	if count > 0 {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "El usuario ya existe",
		})
	}

	hash := pkg.GeneratePassword(user.Password)
	if hash == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "Contraseña inválida",
		})
	}

	res, err := h.DB.Exec("INSERT INTO users (username, password, role, active) VALUES (?, ?, ?, ?)", user.Username, hash, user.Role, active)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error":      "Error al crear el usuario",
			"errorTrace": err.Error(),
		})
	}
	id, _ := res.LastInsertId()

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "Usuario creado correctamente",
		"id":      id,
	})
}

// UpdateUser actualiza un usuario. Una contraseña vacía conserva la actual.
func (h *Handler) UpdateUser(c *fiber.Ctx) error {
	userID := c.Params("user_id")
	var user UpdateUserRequest
	if err := c.BodyParser(&user); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "Error al actualizar el usuario",
		})
	}

	current, err := h.findUser(userID)
	if errors.Is(err, sql.ErrNoRows) {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{
			"error": "El usuario no existe",
		})
	}
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error al comprobar si el usuario existe",
		})
	}

	if user.Username == "" {
		user.Username = current.Username
	}
	if user.Role == "" {
		user.Role = current.Role
	}
	if !validRole(user.Role) {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "Rol inválido, debe ser 'admin' u 'operador'",
		})
	}

	// El administrador del archivo de configuración no puede cambiar de nombre, rol ni estado
	if current.Username == h.Config.DefaultAdminUsername {
		user.Username = current.Username
		user.Role = models.RoleAdmin
		user.Active = true
	}

	hash := current.Password
	if user.Password != "" {
		hash = pkg.GeneratePassword(user.Password)
		if hash == "" {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{
				"error": "Contraseña inválida",
			})
		}
	}

	_, err = h.DB.Exec("UPDATE users SET username = ?, password = ?, role = ?, active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?", user.Username, hash, user.Role, user.Active, userID)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error":      "Error al actualizar el usuario",
			"errorTrace": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Usuario actualizado correctamente",
	})
}

// DeleteUser desactiva un usuario, o lo borra con forceDelete=true
func (h *Handler) DeleteUser(c *fiber.Ctx) error {
	id := c.Params("user_id")
	user, err := h.findUser(id)
	if errors.Is(err, sql.ErrNoRows) {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{
			"error": "Usuario no encontrado",
		})
	}
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error al comprobar si el usuario es borrable",
		})
	}

	if user.Username == h.Config.DefaultAdminUsername {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "No puedes borrar el usuario administrador (el que viene en el archivo de configuración)",
		})
	}

	forceDelete := c.Query("forceDelete") == "true"
	message := "Usuario desactivado correctamente, si quiere eliminarlo utiliza el parámetro 'forceDelete=true' en la URL"
	if forceDelete {
		_, err = h.DB.Exec("DELETE FROM users WHERE id = ?", id)
		message = "Usuario eliminado correctamente"
	} else {
		_, err = h.DB.Exec("UPDATE users SET active = false, updated_at = CURRENT_TIMESTAMP WHERE id = ?", id)
	}
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error al eliminar el usuario",
		})
	}

	return c.JSON(fiber.Map{
		"message":     message,
		"forceDelete": forceDelete,
	})
}
