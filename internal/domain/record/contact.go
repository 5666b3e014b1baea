package record

// Contact - контакт из записной книжки
type Contact struct {
	ID    int    `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Phone string `json:"phone" yaml:"phone"`
	Email string `json:"email" yaml:"email"`
}

var (
	contactFields        = []string{FieldID, "name", "phone", "email"}
	contactMutableFields = []string{"name", "phone", "email"}
	// ContactSearchFields are matched by contact search.
	ContactSearchFields = []string{"name", "phone"}
)

func NewContact(name, phone, email string) Contact {
	return Contact{Name: name, Phone: phone, Email: email}
}

func (c *Contact) Kind() Kind              { return KindContact }
func (c *Contact) GetID() int              { return c.ID }
func (c *Contact) SetID(id int)            { c.ID = id }
func (c *Contact) Fields() []string        { return contactFields }
func (c *Contact) MutableFields() []string { return contactMutableFields }

func (c *Contact) Field(name string) (string, error) {
	switch name {
	case FieldID:
		return formatID(c.ID), nil
	case "name":
		return c.Name, nil
	case "phone":
		return c.Phone, nil
	case "email":
		return c.Email, nil
	}
	return "", unknownField(KindContact, name)
}

func (c *Contact) SetField(name, value string) error {
	switch name {
	case FieldID:
		id, err := parseID(KindContact, value)
		if err != nil {
			return err
		}
		c.ID = id
	case "name":
		c.Name = value
	case "phone":
		c.Phone = value
	case "email":
		c.Email = value
	default:
		return unknownField(KindContact, name)
	}
	return nil
}
