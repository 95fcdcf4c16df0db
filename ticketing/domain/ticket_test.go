package domain

import "testing"

func uintPtr(v uint) *uint { return &v }

func TestMergeIdentityKeys(t *testing.T) {
	ticket := &Ticket{}

	if !ticket.MergeIdentityKeys("111@lid", "") {
		t.Fatalf("expected first merge to report a change")
	}
	if ticket.Lid != "111@lid" {
		t.Fatalf("lid not set: %q", ticket.Lid)
	}

	// Claves existentes nunca se sobreescriben, solo se agregan nuevas.
	if !ticket.MergeIdentityKeys("222@lid", "55@s.whatsapp.net") {
		t.Fatalf("expected jid addition to report a change")
	}
	if ticket.Lid != "111@lid" {
		t.Errorf("existing lid was overwritten: %q", ticket.Lid)
	}
	if ticket.Jid != "55@s.whatsapp.net" {
		t.Errorf("jid not added: %q", ticket.Jid)
	}

	if ticket.MergeIdentityKeys("333@lid", "66@s.whatsapp.net") {
		t.Errorf("no-op merge must not report a change")
	}
}

func TestHasAssignee(t *testing.T) {
	ticket := &Ticket{UserID: uintPtr(5), QueueID: uintPtr(3)}

	if ticket.HasAssignee(nil, nil) {
		t.Errorf("nil hints must never conflict")
	}
	if ticket.HasAssignee(uintPtr(0), uintPtr(0)) {
		t.Errorf("zero hints must never conflict")
	}
	if ticket.HasAssignee(uintPtr(5), uintPtr(3)) {
		t.Errorf("matching hints must not conflict")
	}
	if !ticket.HasAssignee(uintPtr(9), nil) {
		t.Errorf("different agent must conflict")
	}
	if !ticket.HasAssignee(nil, uintPtr(8)) {
		t.Errorf("different queue must conflict")
	}

	// Los grupos admiten varios atendentes, el conflicto de agente no aplica.
	group := &Ticket{UserID: uintPtr(5), IsGroup: true}
	if group.HasAssignee(uintPtr(9), nil) {
		t.Errorf("group tickets must not raise agent conflicts")
	}
}

func TestIdentityOf(t *testing.T) {
	contact := &Contact{ID: 7, Lid: " 111@LID ", Jid: "55@S.Whatsapp.Net"}

	keys := IdentityOf(contact, nil)
	if keys.ContactID != 7 {
		t.Fatalf("contact id: %d", keys.ContactID)
	}
	if keys.Lid != "111@lid" {
		t.Errorf("lid not normalized: %q", keys.Lid)
	}
	if keys.Jid != "55@s.whatsapp.net" {
		t.Errorf("jid not normalized: %q", keys.Jid)
	}

	// Con grupo presente, el grupo es el destino de ruteo.
	group := &Contact{ID: 99, IsGroup: true, Jid: "123@g.us"}
	keys = IdentityOf(contact, group)
	if keys.ContactID != 99 || keys.Jid != "123@g.us" {
		t.Errorf("group must win: %+v", keys)
	}

	if !(IdentityKeys{}).Empty() {
		t.Errorf("empty keys must report empty")
	}
	if (IdentityKeys{Lid: "x"}).Empty() {
		t.Errorf("lid-only keys are usable")
	}
}
