package auth

type DBGroup interface {
	ID() int
	Name() string
}

type GroupDB interface {
	Delete(g DBGroup) error
	GetAllGroups(limit, offset int) ([]DBGroup, error)
	GetGroup(id int) (DBGroup, error)
	GetGroupByName(name string) (DBGroup, error)
	GetGroupsOf(u DBUser) ([]DBGroup, error)
	HasMember(g DBGroup, u DBUser) (bool, error) // false if u is nil
	InsertGroup(name string) (DBGroup, error)
	IsNotFound(err error) bool
	Join(g DBGroup, u DBUser) error
	Leave(g DBGroup, u DBUser) error
	Members(g DBGroup) ([]DBUser, error)
}

// GetGroupsOf shadows AuthDB.GroupDB.GetGroupsOf.
func (a *AuthDB) GetGroupsOf(u DBUser) ([]DBGroup, error) {
	if u == nil {
		return nil, nil
	}
	return a.GroupDB.GetGroupsOf(u)
}

// JoinByName adds the user to the group with the given name. The group is created if it does not exist.
func (a *AuthDB) JoinByName(groupName string, u DBUser) error {
	group, err := a.GetGroupByName(groupName)
	if err != nil {
		if !a.GroupDB.IsNotFound(err) {
			return err
		}
		if group, err = a.InsertGroup(groupName); err != nil {
			return err
		}
	}
	if isMember, err := a.HasMember(group, u); err != nil || isMember {
		return err
	}
	return a.Join(group, u)
}
