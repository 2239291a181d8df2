package ios

// Commands issued to each device, in order. Pagination is disabled first so
// the two listings arrive unpaged; the pipe filters keep the responses down
// to exactly the lines the parsers understand.
const (
	CommandDisablePaging = "term len 0"
	CommandInterfaceMacs = "show interfaces | i , address is"
	CommandMacTable      = "show mac address-table | i DYNAMIC"
)
